package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"innova/models"
	"innova/store"
	"innova/translations"
)

var (
	ErrSendInProgress         = errors.New("a message is already being sent")
	ErrNoConversationSelected = errors.New("no conversation selected")
	ErrEmptyMessage           = errors.New("nothing to send")
)

// ChatSession drives one user's chat screen: the cached conversation list,
// the selected conversation and its messages, the unsent input buffer and
// the in-flight send flag. At most one send is outstanding at a time.
type ChatSession struct {
	svc          *ChatbotService
	userID       uuid.UUID
	minRoundTrip time.Duration

	mu            sync.Mutex
	language      translations.Language
	conversations []models.Conversation
	selectedID    *uuid.UUID
	messages      []models.Message
	pendingInput  string
	sending       bool
}

func NewChatSession(svc *ChatbotService, userID uuid.UUID, language translations.Language, minRoundTrip time.Duration) *ChatSession {
	s := &ChatSession{
		svc:          svc,
		userID:       userID,
		language:     translations.Normalize(string(language)),
		minRoundTrip: minRoundTrip,
	}
	s.LoadConversations()
	return s
}

// LoadConversations refreshes the cached list and, when nothing is selected
// yet, selects the most recently updated conversation.
func (s *ChatSession) LoadConversations() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = s.svc.Conversations(s.userID)
	if s.selectedID == nil && len(s.conversations) > 0 {
		id := s.conversations[0].ID
		s.selectedID = &id
		s.messages = s.svc.Messages(id)
	}
}

// Select makes a conversation active and replaces the message cache
// wholesale with that conversation's messages.
func (s *ChatSession) Select(conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conv := range s.conversations {
		if conv.ID == conversationID {
			id := conv.ID
			s.selectedID = &id
			s.messages = s.svc.Messages(id)
			return nil
		}
	}
	return store.ErrConversationNotFound
}

// CreateConversation creates and selects a fresh conversation, then seeds
// it with the welcome message in the session's language. The welcome stays
// the sole message until the user sends one.
func (s *ChatSession) CreateConversation(title string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(title) == "" {
		title = "Conversación " + time.Now().Format("02/01/2006")
	}

	conv, err := s.svc.CreateConversation(s.userID, title)
	if err != nil {
		return models.Conversation{}, err
	}

	s.conversations = append([]models.Conversation{conv}, s.conversations...)
	id := conv.ID
	s.selectedID = &id

	welcome := translations.For(s.language).ChatbotWelcome
	welcomeMsg, err := s.svc.SaveMessage(conv.ID, models.RoleAssistant, welcome)
	if err != nil {
		return models.Conversation{}, err
	}
	s.messages = []models.Message{welcomeMsg}

	return conv, nil
}

// Send sends the pending input buffer. The buffer is only cleared once the
// send is actually admitted; a rejected send keeps the user's typed text.
func (s *ChatSession) Send(ctx context.Context) (models.Message, error) {
	return s.send(ctx, "", true)
}

// SendText sends an explicit text, as when the user picks a suggested
// option. The input buffer is left untouched.
func (s *ChatSession) SendText(ctx context.Context, text string) (models.Message, error) {
	return s.send(ctx, strings.TrimSpace(text), false)
}

// send persists the user message first (it stays even if the reply never
// arrives), asks the remote endpoint, waits out the minimum round trip,
// then persists and surfaces the assistant reply.
func (s *ChatSession) send(ctx context.Context, text string, fromBuffer bool) (models.Message, error) {
	s.mu.Lock()
	if fromBuffer {
		text = strings.TrimSpace(s.pendingInput)
	}
	if s.sending {
		s.mu.Unlock()
		return models.Message{}, ErrSendInProgress
	}
	if s.selectedID == nil {
		s.mu.Unlock()
		return models.Message{}, ErrNoConversationSelected
	}
	if text == "" {
		s.mu.Unlock()
		return models.Message{}, ErrEmptyMessage
	}
	if fromBuffer {
		s.pendingInput = ""
	}
	convID := *s.selectedID
	language := s.language
	s.sending = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	userMsg, err := s.svc.SaveMessage(convID, models.RoleUser, text)
	if err != nil {
		return models.Message{}, err
	}
	s.mu.Lock()
	s.messages = append(s.messages, userMsg)
	s.mu.Unlock()

	start := time.Now()

	reply, err := s.svc.SendMessage(ctx, ChatRequest{Message: text, Language: language})
	if err != nil {
		log.Printf("[Chat] Send failed: %v", err)
		return models.Message{}, err
	}

	// The reply is never surfaced before the minimum round trip has
	// elapsed; instant answers feel broken.
	if remaining := s.minRoundTrip - time.Since(start); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			return models.Message{}, ctx.Err()
		}
	}

	botMsg, err := s.svc.SaveMessage(convID, models.RoleAssistant, reply.Response)
	if err != nil {
		return models.Message{}, err
	}

	s.mu.Lock()
	if s.selectedID != nil && *s.selectedID == convID {
		s.messages = append(s.messages, botMsg)
	}
	s.conversations = s.svc.Conversations(s.userID)
	s.mu.Unlock()

	return botMsg, nil
}

// Delete removes a conversation. Deleting the selected one falls back to
// the first remaining conversation, or clears the selection entirely.
func (s *ChatSession) Delete(conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.svc.DeleteConversation(conversationID); err != nil {
		return err
	}

	kept := s.conversations[:0]
	for _, conv := range s.conversations {
		if conv.ID != conversationID {
			kept = append(kept, conv)
		}
	}
	s.conversations = kept

	if s.selectedID != nil && *s.selectedID == conversationID {
		if len(s.conversations) > 0 {
			id := s.conversations[0].ID
			s.selectedID = &id
			s.messages = s.svc.Messages(id)
		} else {
			s.selectedID = nil
			s.messages = nil
		}
	}
	return nil
}

// SuggestedOptions returns the quick replies, offered only right after the
// welcome message and before any user reply.
func (s *ChatSession) SuggestedOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) != 1 || s.messages[0].Role != models.RoleAssistant {
		return nil
	}
	options := translations.For(s.language).ChatbotOptions
	return append([]string{}, options...)
}

func (s *ChatSession) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = text
}

func (s *ChatSession) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingInput
}

func (s *ChatSession) SetLanguage(lang translations.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = translations.Normalize(string(lang))
}

func (s *ChatSession) Language() translations.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *ChatSession) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Conversation{}, s.conversations...)
}

func (s *ChatSession) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message{}, s.messages...)
}

func (s *ChatSession) SelectedConversationID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	id := *s.selectedID
	return &id
}

func (s *ChatSession) IsSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}
