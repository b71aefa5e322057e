package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"innova/config"
	"innova/services"
	"innova/store"
	"innova/translations"
)

// ChatSessionsHandler keeps one chat session state machine per signed-in
// user and exposes it over REST. Sessions are dropped when the session
// manager reports a sign-out.
type ChatSessionsHandler struct {
	cfg *config.Config
	svc *services.ChatbotService

	mu       sync.Mutex
	sessions map[uuid.UUID]*services.ChatSession

	unsubscribe func()
}

func NewChatSessionsHandler(cfg *config.Config, svc *services.ChatbotService, manager *services.SessionManager) *ChatSessionsHandler {
	h := &ChatSessionsHandler{
		cfg:      cfg,
		svc:      svc,
		sessions: make(map[uuid.UUID]*services.ChatSession),
	}

	h.unsubscribe = manager.Subscribe(func(ev services.AuthEvent) {
		if ev.SignedIn {
			return
		}
		h.mu.Lock()
		delete(h.sessions, ev.UserID)
		h.mu.Unlock()
		log.Printf("[Chat] Dropped session state for %s", ev.Username)
	})

	return h
}

// Close detaches from the session manager.
func (h *ChatSessionsHandler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

func (h *ChatSessionsHandler) sessionFor(userID uuid.UUID) *services.ChatSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[userID]; ok {
		return s
	}
	s := services.NewChatSession(h.svc, userID, translations.Spanish, h.cfg.ChatMinRoundTrip)
	h.sessions[userID] = s
	return s
}

func (h *ChatSessionsHandler) state(s *services.ChatSession) gin.H {
	return gin.H{
		"conversations":     s.Conversations(),
		"selected_id":       s.SelectedConversationID(),
		"messages":          s.Messages(),
		"is_sending":        s.IsSending(),
		"suggested_options": s.SuggestedOptions(),
		"language":          s.Language(),
	}
}

// State returns the whole chat screen state.
func (h *ChatSessionsHandler) State(c *gin.Context) {
	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))
	s.LoadConversations()
	c.JSON(http.StatusOK, h.state(s))
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (h *ChatSessionsHandler) Create(c *gin.Context) {
	// Body is optional; an empty title gets a dated default.
	var req createConversationRequest
	c.ShouldBindJSON(&req)

	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))

	conv, err := s.CreateConversation(req.Title)
	if err != nil {
		log.Printf("[Chat] Create conversation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv, "state": h.state(s)})
}

func (h *ChatSessionsHandler) Select(c *gin.Context) {
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))

	if err := s.Select(convID); errors.Is(err, store.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select conversation"})
		return
	}
	c.JSON(http.StatusOK, h.state(s))
}

type sendMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	Suggested bool   `json:"suggested"`
}

// Send runs one full exchange: the user message is persisted up front, and
// the reply only comes back after the minimum round trip.
func (h *ChatSessionsHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))

	var err error
	if req.Suggested {
		_, err = s.SendText(c.Request.Context(), req.Message)
	} else {
		s.SetInput(req.Message)
		_, err = s.Send(c.Request.Context())
	}

	switch {
	case errors.Is(err, services.ErrSendInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A message is already being sent"})
		return
	case errors.Is(err, services.ErrNoConversationSelected):
		c.JSON(http.StatusNotFound, gin.H{"error": "No conversation selected"})
		return
	case errors.Is(err, services.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to send"})
		return
	case errors.Is(err, services.ErrChatUnavailable):
		// The user's message stays persisted and unanswered.
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach the chatbot", "state": h.state(s)})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, h.state(s))
}

func (h *ChatSessionsHandler) Delete(c *gin.Context) {
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))

	if err := s.Delete(convID); err != nil {
		log.Printf("[Chat] Delete conversation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, h.state(s))
}

type setLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *ChatSessionsHandler) SetLanguage(c *gin.Context) {
	var req setLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, _ := c.Get("user_id")
	s := h.sessionFor(userID.(uuid.UUID))
	s.SetLanguage(translations.Normalize(req.Language))
	c.JSON(http.StatusOK, gin.H{"language": s.Language()})
}

// Clear drops every conversation of the current user.
func (h *ChatSessionsHandler) Clear(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := userID.(uuid.UUID)

	if err := h.svc.ClearUserConversations(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear conversations"})
		return
	}

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "Conversations cleared"})
}
