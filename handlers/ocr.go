package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"innova/config"
	"innova/store"
)

// OCRHandler serves the recognition catalog endpoints.
type OCRHandler struct {
	cfg    *config.Config
	plates *store.PlateStore
}

func NewOCRHandler(cfg *config.Config, plates *store.PlateStore) *OCRHandler {
	return &OCRHandler{cfg: cfg, plates: plates}
}

type ocrRequest struct {
	ImageName string `json:"image_name" binding:"required"`
}

// Recognize returns the plate number only. Invalid plates are rejected.
func (h *OCRHandler) Recognize(c *gin.Context) {
	var req ocrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	plate, err := h.plates.ByImageName(req.ImageName)
	if errors.Is(err, store.ErrPlateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "OCR data not found for: " + req.ImageName})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	result, err := store.ResultFromPlate(plate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	if !result.IsValid {
		bad := store.InvalidCharacters(result.Characters)
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("Plate has invalid characters: %s. Only uppercase alphanumerics are allowed.", strings.Join(bad, ", ")),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plate_number": result.PlateNumber,
		"image_name":   result.ImageName,
	})
}

// RecognizeDetailed returns the full result, including character boxes,
// the plate quadrilateral and the validity flag.
func (h *OCRHandler) RecognizeDetailed(c *gin.Context) {
	var req ocrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	plate, err := h.plates.ByImageName(req.ImageName)
	if errors.Is(err, store.ErrPlateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "OCR data not found for: " + req.ImageName})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	result, err := store.ResultFromPlate(plate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *OCRHandler) Exists(c *gin.Context) {
	exists, err := h.plates.Exists(c.Param("image"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *OCRHandler) Plates(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid limit"})
			return
		}
		limit = parsed
	}

	plates, err := h.plates.All(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plates": plates, "total": len(plates)})
}

// Image redirects to the CDN copy of a catalog image.
func (h *OCRHandler) Image(c *gin.Context) {
	image := c.Param("image")

	exists, err := h.plates.Exists(image)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found: " + image})
		return
	}

	c.Redirect(http.StatusFound, h.cfg.ImageBaseURL+"/"+image)
}
