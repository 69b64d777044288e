// Package metrics computes display-ready values from the raw execution
// counters the backend reports for each workflow. All functions are pure and
// total: defined for every finite numeric input, no error returns.
package metrics

import (
	"math"
	"strconv"
)

// msPerMinute converts average execution times, which the backend reports in
// milliseconds, to the minutes used by the manual-time baseline.
const msPerMinute = 60000

// TimeSavedPerRun returns the minutes saved by one automated execution
// compared to the manual baseline. The result is clamped at zero: automation
// never takes "negative" time relative to doing the work by hand, so a
// baseline smaller than the execution time is a modeling error and is not
// propagated.
func TimeSavedPerRun(manualMinutes, avgExecutionMS float64) float64 {
	saved := manualMinutes - avgExecutionMS/msPerMinute
	return math.Max(0, saved)
}

// TotalTimeSavedHours returns the cumulative hours saved across all
// executions of a workflow.
func TotalTimeSavedHours(manualMinutes, avgExecutionMS float64, totalExecutions int64) float64 {
	return TimeSavedPerRun(manualMinutes, avgExecutionMS) * float64(totalExecutions) / 60
}

// SuccessRate returns the percentage of successful executions, or 0 when
// there have been no executions at all.
func SuccessRate(successful, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

// FormatDecimal renders v with at most two decimal places, dropping the
// decimal point entirely for integral values: 5.0 → "5", 5.125 → "5.13".
func FormatDecimal(v float64) string {
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
