package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"innova/models"
	"innova/store"
	"innova/translations"
)

// ErrChatUnavailable is the generic connection error surfaced when the chat
// completion endpoint cannot be reached or answers with a non-success
// status. There is no retry.
var ErrChatUnavailable = errors.New("could not reach the chatbot service")

type ChatRequest struct {
	Message  string                `json:"message"`
	Language translations.Language `json:"language"`
}

type ChatReply struct {
	Response string                `json:"response"`
	Language translations.Language `json:"language"`
}

// ChatbotService is the single interface the chat surface talks to: remote
// message completion plus pass-through conversation persistence.
type ChatbotService struct {
	store    *store.ConversationStore
	endpoint string
	client   *http.Client
}

func NewChatbotService(convStore *store.ConversationStore, endpoint string, timeout time.Duration) *ChatbotService {
	return &ChatbotService{
		store:    convStore,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// SendMessage asks the completion endpoint for a reply. One attempt only.
func (s *ChatbotService) SendMessage(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrChatUnavailable, resp.StatusCode)
	}

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	return &reply, nil
}

func (s *ChatbotService) Conversations(userID uuid.UUID) []models.Conversation {
	return s.store.Conversations(userID)
}

func (s *ChatbotService) CreateConversation(userID uuid.UUID, title string) (models.Conversation, error) {
	return s.store.CreateConversation(userID, title)
}

func (s *ChatbotService) Messages(conversationID uuid.UUID) []models.Message {
	return s.store.Messages(conversationID)
}

func (s *ChatbotService) SaveMessage(conversationID uuid.UUID, role models.Role, content string) (models.Message, error) {
	return s.store.AppendMessage(conversationID, role, content)
}

func (s *ChatbotService) DeleteConversation(conversationID uuid.UUID) error {
	return s.store.DeleteConversation(conversationID)
}

func (s *ChatbotService) ClearUserConversations(userID uuid.UUID) error {
	return s.store.ClearUserConversations(userID)
}
