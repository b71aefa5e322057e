package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innova/models"
)

type fakeRecognizer struct {
	result *models.RecognitionResult
	err    error
	calls  int
}

func (f *fakeRecognizer) RecognizeDetailed(ctx context.Context, imageName string) (*models.RecognitionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.ImageName = imageName
	return &r, nil
}

type fakeReporter struct {
	err      error
	readings []models.PlateReading
}

func (f *fakeReporter) Report(ctx context.Context, reading models.PlateReading) error {
	f.readings = append(f.readings, reading)
	return f.err
}

func validResult() *models.RecognitionResult {
	return &models.RecognitionResult{
		PlateNumber:      "5847JKL",
		NumCharacters:    7,
		NumPlatesInImage: 1,
		IsValid:          true,
		Coordinates:      models.Quadrilateral{TopLeft: [2]int{10, 20}},
	}
}

func TestRecognizeSuccess(t *testing.T) {
	reporter := &fakeReporter{}
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, reporter, 0)

	result, err := s.Recognize(context.Background(), "12282863.jpg")
	require.NoError(t, err)
	assert.Equal(t, "5847JKL", result.PlateNumber)
	assert.Equal(t, "12282863.jpg", result.ImageName)

	require.NotNil(t, s.Result())
	assert.Empty(t, s.LastError())
	assert.False(t, s.IsProcessing())

	// Timestamp of the shot is recorded in RFC 3339.
	_, err = time.Parse(time.RFC3339, s.LastShotTime())
	require.NoError(t, err)

	// The reading went to the sink with the plate coordinates attached.
	require.Len(t, reporter.readings, 1)
	assert.Equal(t, "5847JKL", reporter.readings[0].PlateNumber)
	require.NotNil(t, reporter.readings[0].Coordinates)
	assert.Equal(t, [2]int{10, 20}, reporter.readings[0].Coordinates.TopLeft)
}

func TestRecognizeFailureKeepsMessage(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{err: errors.New("Plate has invalid characters: y, z")}, &fakeReporter{}, 0)

	_, err := s.Recognize(context.Background(), "12701992.jpg")
	require.Error(t, err)

	assert.Nil(t, s.Result())
	assert.Equal(t, "Plate has invalid characters: y, z", s.LastError())
	assert.Empty(t, s.History())
	assert.Empty(t, s.LastShotTime())
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestRecognizeFailureWithoutMessageUsesGenericOne(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{err: emptyError{}}, &fakeReporter{}, 0)

	_, err := s.Recognize(context.Background(), "12282863.jpg")
	require.Error(t, err)
	assert.Equal(t, "Error processing image", s.LastError())
}

func TestReporterFailureIsSwallowed(t *testing.T) {
	reporter := &fakeReporter{err: errors.New("sink down")}
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, reporter, 0)

	result, err := s.Recognize(context.Background(), "12282863.jpg")
	require.NoError(t, err)
	require.NotNil(t, result)

	// The shot still counts even though the sink rejected the reading.
	assert.Empty(t, s.LastError())
	assert.Len(t, s.History(), 1)
}

func TestOnlyOneRecognitionAtATime(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, &fakeReporter{}, 100*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Recognize(context.Background(), "12282863.jpg")
		assert.NoError(t, err)
	}()

	require.Eventually(t, s.IsProcessing, time.Second, 5*time.Millisecond)

	_, err := s.Recognize(context.Background(), "12365363.jpg")
	assert.ErrorIs(t, err, ErrRecognitionInProgress)
	<-done
}

func TestRecognizeRespectsContextCancel(t *testing.T) {
	recognizer := &fakeRecognizer{result: validResult()}
	s := NewRecognitionSession(recognizer, &fakeReporter{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Recognize(ctx, "12282863.jpg")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, recognizer.calls)
	assert.False(t, s.IsProcessing())
}

func TestHistoryPrependsNewestFirst(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, &fakeReporter{}, 0)

	_, err := s.Recognize(context.Background(), "12282863.jpg")
	require.NoError(t, err)
	_, err = s.Recognize(context.Background(), "12365363.jpg")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "12365363.jpg", history[0].ImageName)
	assert.Equal(t, "12282863.jpg", history[1].ImageName)

	entry, ok := s.HistoryEntry(history[1].ID)
	require.True(t, ok)
	assert.Equal(t, "12282863.jpg", entry.ImageName)

	_, ok = s.HistoryEntry("nope")
	assert.False(t, ok)
}

func TestResetKeepsHistoryAndLastShot(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, &fakeReporter{}, 0)

	_, err := s.Recognize(context.Background(), "12282863.jpg")
	require.NoError(t, err)
	shotTime := s.LastShotTime()

	s.Reset()
	assert.Nil(t, s.Result())
	assert.Empty(t, s.LastError())
	assert.Len(t, s.History(), 1)
	assert.Equal(t, shotTime, s.LastShotTime())
}

func TestClearHistoryLeavesResultAlone(t *testing.T) {
	s := NewRecognitionSession(&fakeRecognizer{result: validResult()}, &fakeReporter{}, 0)

	_, err := s.Recognize(context.Background(), "12282863.jpg")
	require.NoError(t, err)

	s.ClearHistory()
	assert.Empty(t, s.History())
	assert.NotNil(t, s.Result())
	assert.NotEmpty(t, s.LastShotTime())
}
