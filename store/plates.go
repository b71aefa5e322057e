package store

import (
	"encoding/json"
	"errors"
	"log"

	"gorm.io/gorm"

	"innova/models"
)

var ErrPlateNotFound = errors.New("plate not found")

// PlateStore is the recognition catalog, kept in the database.
type PlateStore struct {
	db *gorm.DB
}

func NewPlateStore(db *gorm.DB) *PlateStore {
	return &PlateStore{db: db}
}

func (s *PlateStore) ByImageName(imageName string) (*models.Plate, error) {
	var plate models.Plate
	if err := s.db.Where("image_name = ?", imageName).First(&plate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlateNotFound
		}
		return nil, err
	}
	return &plate, nil
}

func (s *PlateStore) Exists(imageName string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Plate{}).Where("image_name = ?", imageName).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// All lists the catalog. limit <= 0 means no limit.
func (s *PlateStore) All(limit int) ([]models.PlateSummary, error) {
	var plates []models.Plate
	q := s.db.Order("image_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&plates).Error; err != nil {
		return nil, err
	}

	out := make([]models.PlateSummary, 0, len(plates))
	for _, p := range plates {
		result, err := ResultFromPlate(&p)
		if err != nil {
			log.Printf("[OCR] Skipping malformed catalog row %s: %v", p.ImageName, err)
			continue
		}
		out = append(out, models.PlateSummary{
			ImageName:     p.ImageName,
			PlateNumber:   p.PlateNumber,
			NumCharacters: result.NumCharacters,
		})
	}
	return out, nil
}

// ResultFromPlate expands a catalog row into the detailed recognition
// response. A plate is valid when every character is an uppercase
// alphanumeric.
func ResultFromPlate(p *models.Plate) (*models.RecognitionResult, error) {
	var characters []models.CharacterBox
	if err := json.Unmarshal(p.Characters, &characters); err != nil {
		return nil, err
	}
	var coords models.Quadrilateral
	if err := json.Unmarshal(p.Coordinates, &coords); err != nil {
		return nil, err
	}

	return &models.RecognitionResult{
		PlateNumber:      p.PlateNumber,
		ImageName:        p.ImageName,
		NumCharacters:    len(characters),
		NumPlatesInImage: 1,
		Characters:       characters,
		Coordinates:      coords,
		IsValid:          charactersValid(characters),
	}, nil
}

func charactersValid(characters []models.CharacterBox) bool {
	for _, c := range characters {
		if len(c.Char) != 1 {
			return false
		}
		ch := c.Char[0]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return false
		}
	}
	return len(characters) > 0
}

// InvalidCharacters lists the offending characters of an invalid plate,
// for error messages.
func InvalidCharacters(characters []models.CharacterBox) []string {
	var bad []string
	for _, c := range characters {
		if len(c.Char) != 1 {
			bad = append(bad, c.Char)
			continue
		}
		ch := c.Char[0]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			bad = append(bad, c.Char)
		}
	}
	return bad
}
