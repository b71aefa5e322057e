package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"innova/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

type document struct {
	Conversations []models.Conversation `json:"conversations"`
}

// ConversationStore persists every conversation inside one JSON document.
// Each mutation is a full read-modify-write of the document; concurrent
// writers from other processes race with last-write-wins on the whole file.
// Only this store may touch the document.
type ConversationStore struct {
	path string
	mu   sync.Mutex
}

func NewConversationStore(path string) *ConversationStore {
	return &ConversationStore{path: path}
}

// load reads the document. A missing or corrupt file yields an empty
// document, never an error.
func (s *ConversationStore) load() document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return document{}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[Store] Corrupt conversations document, starting empty: %v", err)
		return document{}
	}
	return doc
}

func (s *ConversationStore) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0644)
}

// Conversations returns the user's conversations, most recently updated
// first.
func (s *ConversationStore) Conversations(userID uuid.UUID) []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	out := make([]models.Conversation, 0)
	for _, conv := range doc.Conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *ConversationStore) CreateConversation(userID uuid.UUID, title string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := models.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := s.load()
	doc.Conversations = append(doc.Conversations, conv)
	if err := s.save(doc); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// Messages returns the messages of a conversation. An unknown conversation
// yields an empty slice, not an error.
func (s *ConversationStore) Messages(conversationID uuid.UUID) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for _, conv := range doc.Conversations {
		if conv.ID == conversationID {
			return append([]models.Message{}, conv.Messages...)
		}
	}
	return []models.Message{}
}

// AppendMessage adds one message to a conversation and bumps its UpdatedAt.
func (s *ConversationStore) AppendMessage(conversationID uuid.UUID, role models.Role, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.Conversations {
		if doc.Conversations[i].ID != conversationID {
			continue
		}

		msg := models.Message{
			ID:        uuid.New(),
			Role:      role,
			Content:   content,
			CreatedAt: time.Now(),
		}
		doc.Conversations[i].Messages = append(doc.Conversations[i].Messages, msg)
		doc.Conversations[i].UpdatedAt = time.Now()

		if err := s.save(doc); err != nil {
			return models.Message{}, err
		}
		return msg, nil
	}
	return models.Message{}, ErrConversationNotFound
}

// DeleteConversation removes a conversation and its messages. Deleting an
// absent conversation is a no-op.
func (s *ConversationStore) DeleteConversation(conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	kept := doc.Conversations[:0]
	for _, conv := range doc.Conversations {
		if conv.ID != conversationID {
			kept = append(kept, conv)
		}
	}
	doc.Conversations = kept
	return s.save(doc)
}

// ClearUserConversations drops every conversation owned by the user.
func (s *ConversationStore) ClearUserConversations(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	kept := doc.Conversations[:0]
	for _, conv := range doc.Conversations {
		if conv.UserID != userID {
			kept = append(kept, conv)
		}
	}
	doc.Conversations = kept
	return s.save(doc)
}
