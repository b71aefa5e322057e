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
)

// RecognitionHandler keeps one recognition session per user.
type RecognitionHandler struct {
	cfg    *config.Config
	client *services.OCRClient

	mu       sync.Mutex
	sessions map[uuid.UUID]*services.RecognitionSession

	unsubscribe func()
}

func NewRecognitionHandler(cfg *config.Config, client *services.OCRClient, manager *services.SessionManager) *RecognitionHandler {
	h := &RecognitionHandler{
		cfg:      cfg,
		client:   client,
		sessions: make(map[uuid.UUID]*services.RecognitionSession),
	}

	h.unsubscribe = manager.Subscribe(func(ev services.AuthEvent) {
		if ev.SignedIn {
			return
		}
		h.mu.Lock()
		delete(h.sessions, ev.UserID)
		h.mu.Unlock()
	})

	return h
}

func (h *RecognitionHandler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

// SessionFor returns the user's recognition session, creating it on first
// use. The carousel handler shares these sessions to clear the result
// panel on navigation.
func (h *RecognitionHandler) SessionFor(userID uuid.UUID) *services.RecognitionSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[userID]; ok {
		return s
	}
	s := services.NewRecognitionSession(h.client, h.client, h.cfg.OCRProcessingDelay)
	h.sessions[userID] = s
	return s
}

func (h *RecognitionHandler) state(s *services.RecognitionSession) gin.H {
	return gin.H{
		"result":         s.Result(),
		"error":          s.LastError(),
		"is_processing":  s.IsProcessing(),
		"last_shot_time": s.LastShotTime(),
		"history":        s.History(),
	}
}

type shootRequest struct {
	ImageName string `json:"image_name" binding:"required"`
}

// Shoot runs one recognition, including the visual pacing delay. Failures
// come back as the session's inline error message; the sink forward never
// affects the response.
func (h *RecognitionHandler) Shoot(c *gin.Context) {
	var req shootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, _ := c.Get("user_id")
	s := h.SessionFor(userID.(uuid.UUID))

	result, err := s.Recognize(c.Request.Context(), req.ImageName)
	if errors.Is(err, services.ErrRecognitionInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "A recognition is already running"})
		return
	}
	if err != nil {
		log.Printf("[OCR] Recognition of %s failed: %v", req.ImageName, err)
		c.JSON(http.StatusUnprocessableEntity, h.state(s))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result, "state": h.state(s)})
}

func (h *RecognitionHandler) State(c *gin.Context) {
	userID, _ := c.Get("user_id")
	c.JSON(http.StatusOK, h.state(h.SessionFor(userID.(uuid.UUID))))
}

func (h *RecognitionHandler) Reset(c *gin.Context) {
	userID, _ := c.Get("user_id")
	s := h.SessionFor(userID.(uuid.UUID))
	s.Reset()
	c.JSON(http.StatusOK, h.state(s))
}

func (h *RecognitionHandler) ClearHistory(c *gin.Context) {
	userID, _ := c.Get("user_id")
	s := h.SessionFor(userID.(uuid.UUID))
	s.ClearHistory()
	c.JSON(http.StatusOK, h.state(s))
}

// HistoryEntry returns one past shot by id.
func (h *RecognitionHandler) HistoryEntry(c *gin.Context) {
	userID, _ := c.Get("user_id")
	s := h.SessionFor(userID.(uuid.UUID))

	entry, ok := s.HistoryEntry(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
