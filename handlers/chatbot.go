package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"innova/services"
	"innova/translations"
)

// ChatbotHandler serves the message completion endpoint the conversation
// facade talks to.
type ChatbotHandler struct {
	responder *services.Responder
}

func NewChatbotHandler(responder *services.Responder) *ChatbotHandler {
	return &ChatbotHandler{responder: responder}
}

type chatbotMessageRequest struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
}

func (h *ChatbotHandler) Message(c *gin.Context) {
	var req chatbotMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	lang := translations.Normalize(req.Language)
	c.JSON(http.StatusOK, gin.H{
		"response": h.responder.Respond(req.Message, lang),
		"language": lang,
	})
}
