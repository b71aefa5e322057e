package store

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"innova/models"
)

func newTestPlateStore(t *testing.T) *PlateStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Plate{}))
	s := NewPlateStore(db)
	require.NoError(t, s.SeedPlates())
	return s
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestPlateStore(t)
	before, err := s.All(0)
	require.NoError(t, err)

	require.NoError(t, s.SeedPlates())
	after, err := s.All(0)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestByImageName(t *testing.T) {
	s := newTestPlateStore(t)

	plate, err := s.ByImageName("12282863.jpg")
	require.NoError(t, err)
	assert.Equal(t, "5847JKL", plate.PlateNumber)

	_, err = s.ByImageName("missing.jpg")
	assert.ErrorIs(t, err, ErrPlateNotFound)
}

func TestExists(t *testing.T) {
	s := newTestPlateStore(t)

	ok, err := s.Exists("12365363.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists("missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllRespectsLimit(t *testing.T) {
	s := newTestPlateStore(t)

	all, err := s.All(0)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	limited, err := s.All(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestResultFromPlate(t *testing.T) {
	s := newTestPlateStore(t)

	plate, err := s.ByImageName("12478120.jpg")
	require.NoError(t, err)

	result, err := ResultFromPlate(plate)
	require.NoError(t, err)
	assert.Equal(t, "1276BCD", result.PlateNumber)
	assert.Equal(t, len("1276BCD"), result.NumCharacters)
	assert.Equal(t, 1, result.NumPlatesInImage)
	assert.True(t, result.IsValid)
	assert.NotZero(t, result.Coordinates.TopLeft)
}

func TestInvalidPlateDetected(t *testing.T) {
	s := newTestPlateStore(t)

	// The seed contains one plate with a lowercase character.
	plate, err := s.ByImageName("12701992.jpg")
	require.NoError(t, err)

	result, err := ResultFromPlate(plate)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, InvalidCharacters(result.Characters), "y")
	assert.Contains(t, InvalidCharacters(result.Characters), "z")
}

func TestCharactersValid(t *testing.T) {
	cases := []struct {
		name  string
		chars string
		valid bool
	}{
		{"uppercase alphanumeric", "1234ABC", true},
		{"lowercase letter", "1234aBC", false},
		{"symbol", "1234-BC", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var boxes []models.CharacterBox
			for _, r := range tc.chars {
				boxes = append(boxes, models.CharacterBox{Char: string(r)})
			}
			assert.Equal(t, tc.valid, charactersValid(boxes))
		})
	}
}
