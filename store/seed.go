package store

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"innova/models"
)

type seedPlate struct {
	imageName   string
	plateNumber string
	coords      models.Quadrilateral
}

// Sample catalog entries matching the demo image set. Character boxes are
// laid out left to right inside the plate quadrilateral.
var seedPlates = []seedPlate{
	{"12282863.jpg", "5847JKL", models.Quadrilateral{
		TopLeft: [2]int{112, 318}, TopRight: [2]int{428, 312},
		BottomRight: [2]int{430, 388}, BottomLeft: [2]int{114, 394},
	}},
	{"12365363.jpg", "9034MNP", models.Quadrilateral{
		TopLeft: [2]int{96, 274}, TopRight: [2]int{402, 270},
		BottomRight: [2]int{404, 344}, BottomLeft: [2]int{98, 348},
	}},
	{"12478120.jpg", "1276BCD", models.Quadrilateral{
		TopLeft: [2]int{150, 352}, TopRight: [2]int{470, 346},
		BottomRight: [2]int{472, 420}, BottomLeft: [2]int{152, 426},
	}},
	{"12589447.jpg", "3412FGH", models.Quadrilateral{
		TopLeft: [2]int{88, 290}, TopRight: [2]int{398, 286},
		BottomRight: [2]int{400, 358}, BottomLeft: [2]int{90, 362},
	}},
	// Lowercase character, kept to exercise the invalid-plate path.
	{"12701992.jpg", "7755Xyz", models.Quadrilateral{
		TopLeft: [2]int{120, 300}, TopRight: [2]int{436, 296},
		BottomRight: [2]int{438, 370}, BottomLeft: [2]int{122, 374},
	}},
}

// SeedPlates fills the catalog on first start. Existing rows are left alone.
func (s *PlateStore) SeedPlates() error {
	var count int64
	if err := s.db.Model(&models.Plate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, sp := range seedPlates {
		characters := boxesFor(sp.plateNumber, sp.coords)
		charJSON, err := json.Marshal(characters)
		if err != nil {
			return err
		}
		coordJSON, err := json.Marshal(sp.coords)
		if err != nil {
			return err
		}

		plate := models.Plate{
			ImageName:   sp.imageName,
			PlateNumber: sp.plateNumber,
			Characters:  datatypes.JSON(charJSON),
			Coordinates: datatypes.JSON(coordJSON),
		}
		if err := s.db.Create(&plate).Error; err != nil {
			return err
		}
	}

	log.Printf("[OCR] Seeded %d catalog plates", len(seedPlates))
	return nil
}

func boxesFor(plateNumber string, coords models.Quadrilateral) []models.CharacterBox {
	left := coords.TopLeft[0]
	top := coords.TopLeft[1]
	width := coords.TopRight[0] - left
	if width <= 0 {
		width = 300
	}
	charWidth := width / len(plateNumber)

	boxes := make([]models.CharacterBox, 0, len(plateNumber))
	for i, r := range plateNumber {
		boxes = append(boxes, models.CharacterBox{
			Char:   fmt.Sprintf("%c", r),
			Left:   left + i*charWidth,
			Top:    top + 8,
			Width:  charWidth - 4,
			Height: 56,
		})
	}
	return boxes
}
