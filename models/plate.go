package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CharacterBox is one detected character and its bounding box.
type CharacterBox struct {
	Char   string `json:"char"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Quadrilateral is the plate outline in image coordinates, corner points
// given as [x, y].
type Quadrilateral struct {
	TopLeft     [2]int `json:"top_left"`
	TopRight    [2]int `json:"top_right"`
	BottomRight [2]int `json:"bottom_right"`
	BottomLeft  [2]int `json:"bottom_left"`
}

// Plate is one catalog entry backing the recognition endpoints. Characters
// and Coordinates are stored as JSON columns.
type Plate struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ImageName   string         `gorm:"size:255;uniqueIndex;not null" json:"image_name"`
	PlateNumber string         `gorm:"size:32;not null" json:"plate_number"`
	Characters  datatypes.JSON `gorm:"not null;default:'[]'" json:"characters"`
	Coordinates datatypes.JSON `gorm:"not null;default:'{}'" json:"coordinates"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (p *Plate) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RecognitionResult is the detailed recognition response.
type RecognitionResult struct {
	PlateNumber      string         `json:"plate_number"`
	ImageName        string         `json:"image_name"`
	NumCharacters    int            `json:"num_characters"`
	NumPlatesInImage int            `json:"num_plates_in_image"`
	Characters       []CharacterBox `json:"characters"`
	Coordinates      Quadrilateral  `json:"coordinates"`
	IsValid          bool           `json:"is_valid"`
}

// PlateSummary is one row of the catalog listing.
type PlateSummary struct {
	ImageName     string `json:"image_name"`
	PlateNumber   string `json:"plate_number"`
	NumCharacters int    `json:"num_characters"`
}

// PlateReading is the payload forwarded to the external reporting sink.
type PlateReading struct {
	PlateNumber string         `json:"plate_number"`
	ImageName   string         `json:"image_name"`
	Timestamp   string         `json:"timestamp"`
	Coordinates *Quadrilateral `json:"coordinates,omitempty"`
}

// ShotHistoryEntry is an immutable summary of one completed recognition.
type ShotHistoryEntry struct {
	ID          string `json:"id"`
	ImageName   string `json:"image_name"`
	PlateNumber string `json:"plate_number"`
	Timestamp   string `json:"timestamp"`
	IsValid     bool   `json:"is_valid"`
}
