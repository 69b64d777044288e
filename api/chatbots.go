package api

import (
	"context"
)

// ChatbotService manages tenant chatbots and their test conversations.
type ChatbotService struct {
	api *API
}

// List returns the chatbots visible to the current session, optionally
// filtered by tenant.
func (s *ChatbotService) List(ctx context.Context, clientID string) ([]Chatbot, error) {
	rb := s.api.request("ListChatbots").Path("/chatbots")
	if clientID != "" {
		rb.Query("client_id", clientID)
	}

	var bots []Chatbot
	_, err := rb.Decode(&bots).Get(ctx)
	if err != nil {
		return nil, err
	}
	return bots, nil
}

// Create registers a chatbot for a tenant.
func (s *ChatbotService) Create(ctx context.Context, req CreateChatbotRequest) (*Chatbot, error) {
	var bot Chatbot
	_, err := s.api.request("CreateChatbot").
		Body(req).
		Decode(&bot).
		Post(ctx, "/chatbots")
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

// Delete removes a chatbot.
func (s *ChatbotService) Delete(ctx context.Context, id string) error {
	_, err := s.api.request("DeleteChatbot").
		Path("/chatbots/{id}").
		PathParam("id", id).
		Delete(ctx)
	return err
}

// SendTestMessage relays one message through the chatbot's n8n webhook and
// returns the reply. The backend generates a session ID when msg leaves it
// empty, so callers thread the returned SessionID into follow-up turns.
func (s *ChatbotService) SendTestMessage(ctx context.Context, id string, msg ChatMessage) (*ChatReply, error) {
	var reply ChatReply
	_, err := s.api.request("SendChatbotMessage").
		Path("/chatbots/{id}/messages").
		PathParam("id", id).
		Body(msg).
		Decode(&reply).
		Post(ctx)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
