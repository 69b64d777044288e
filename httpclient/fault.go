package httpclient

import (
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// ErrFaultInjected marks a failure synthesized by the fault-injection
// transport.
var ErrFaultInjected = errors.New("injected network fault")

// FaultConfig configures fault injection for exercising the client against a
// staging deployment. Faults are injected below the retry and breaker layers,
// so the chain reacts to them exactly as it would to real backend trouble.
//
//	client := httpclient.New(
//	    httpclient.WithFaultConfig(httpclient.FaultConfig{
//	        Latency:   200 * time.Millisecond,
//	        ErrorRate: 0.1,
//	    }),
//	)
type FaultConfig struct {
	// Latency is a fixed delay added to every request.
	Latency time.Duration

	// LatencyJitter adds a random delay in [0, LatencyJitter) on top of
	// Latency.
	LatencyJitter time.Duration

	// ErrorRate is the probability in [0, 1] that a request fails with a
	// synthesized connection error.
	ErrorRate float64

	// StallRate is the probability in [0, 1] that a request blocks until its
	// context expires, simulating a hung upstream.
	StallRate float64
}

func (c FaultConfig) delay() time.Duration {
	d := c.Latency
	if c.LatencyJitter > 0 {
		d += rand.N(c.LatencyJitter)
	}
	return d
}

type faultTransport struct {
	next http.RoundTripper
	cfg  FaultConfig
}

func newFaultTransport(next http.RoundTripper, cfg FaultConfig) http.RoundTripper {
	return &faultTransport{next: next, cfg: cfg}
}

// RoundTrip implements http.RoundTripper.
func (t *faultTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.cfg.StallRate > 0 && rand.Float64() < t.cfg.StallRate {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if t.cfg.ErrorRate > 0 && rand.Float64() < t.cfg.ErrorRate {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: ErrFaultInjected}
	}
	if d := t.cfg.delay(); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return t.next.RoundTrip(req)
}
