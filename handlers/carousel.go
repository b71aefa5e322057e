package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"innova/config"
	"innova/services"
	"innova/utils"
)

// CarouselHandler runs one carousel per WebSocket connection. The carousel
// and both of its timers live exactly as long as the connection; closing
// the socket tears everything down.
type CarouselHandler struct {
	cfg         *config.Config
	client      *services.OCRClient
	recognition *RecognitionHandler
	upgrader    websocket.Upgrader
}

func NewCarouselHandler(cfg *config.Config, client *services.OCRClient, recognition *RecognitionHandler) *CarouselHandler {
	return &CarouselHandler{
		cfg:         cfg,
		client:      client,
		recognition: recognition,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     carouselOriginCheck(cfg.AllowedOrigins),
		},
	}
}

type carouselCommand struct {
	Type    string `json:"type"` // "next" | "previous" | "set" | "auto" | "reload"
	Index   int    `json:"index"`
	Enabled bool   `json:"enabled"`
}

type carouselState struct {
	Type        string   `json:"type"` // always "state"
	Images      []string `json:"images"`
	Index       int      `json:"index"`
	Image       string   `json:"image"`
	ImageURL    string   `json:"image_url,omitempty"`
	Progress    float64  `json:"progress"`
	AutoAdvance bool     `json:"auto_advance"`
	Error       string   `json:"error,omitempty"`
}

func (h *CarouselHandler) HandleWebSocket(c *gin.Context) {
	// Auth via query param for WebSocket
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := utils.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Carousel] WS upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Navigating away from an image makes its recognition result stale,
	// so every advance clears the user's result panel.
	recognition := h.recognition.SessionFor(claims.UserID)
	carousel := services.NewCarousel(h.cfg.AutoAdvanceInterval, h.cfg.ProgressTick, func(int) {
		recognition.Reset()
	})
	defer carousel.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := carousel.Load(ctx, h.client); err != nil {
		log.Printf("[Carousel] Initial catalog load failed: %v", err)
	}

	// Single writer: state frames go out on every progress tick.
	go func() {
		ticker := time.NewTicker(h.cfg.ProgressTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteJSON(h.snapshot(carousel)); err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Carousel] WebSocket error: %v", err)
			}
			break
		}

		var cmd carouselCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}

		switch cmd.Type {
		case "next":
			carousel.Next()
		case "previous":
			carousel.Previous()
		case "set":
			carousel.SetIndex(cmd.Index)
		case "auto":
			carousel.SetAutoAdvance(cmd.Enabled)
		case "reload":
			if err := carousel.Load(ctx, h.client); err != nil {
				log.Printf("[Carousel] Catalog reload failed: %v", err)
			}
		}
	}
}

// carouselOriginCheck admits carousel connections whose Origin matches one
// of the configured origins by host. Requests without an Origin header,
// such as CLI clients, pass.
func carouselOriginCheck(origins []string) func(r *http.Request) bool {
	hosts := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts[u.Host] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := hosts[u.Host]
		return ok
	}
}

func (h *CarouselHandler) snapshot(carousel *services.Carousel) carouselState {
	state := carouselState{
		Type:        "state",
		Images:      carousel.Images(),
		Index:       carousel.Index(),
		Image:       carousel.Current(),
		Progress:    carousel.Progress(),
		AutoAdvance: carousel.AutoAdvanceEnabled(),
	}
	if state.Image != "" {
		state.ImageURL = h.client.ImageURL(state.Image)
	}
	if err := carousel.LoadErr(); err != nil {
		state.Error = err.Error()
	}
	return state
}
