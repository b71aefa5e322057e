package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"innova/models"
)

var ErrRecognitionInProgress = errors.New("a recognition is already running")

// genericRecognitionError is shown when a failure carries no message of
// its own.
const genericRecognitionError = "Error processing image"

// Recognizer resolves one image into a detailed recognition result.
type Recognizer interface {
	RecognizeDetailed(ctx context.Context, imageName string) (*models.RecognitionResult, error)
}

// Reporter receives completed readings, best-effort.
type Reporter interface {
	Report(ctx context.Context, reading models.PlateReading) error
}

// RecognitionSession tracks the state of one user's shots: the latest
// detailed result, the error message shown inline, the processing flag and
// the prepend-only shot history.
type RecognitionSession struct {
	recognizer Recognizer
	reporter   Reporter
	delay      time.Duration

	mu           sync.Mutex
	result       *models.RecognitionResult
	errMsg       string
	processing   bool
	lastShotTime string
	history      []models.ShotHistoryEntry
}

func NewRecognitionSession(recognizer Recognizer, reporter Reporter, delay time.Duration) *RecognitionSession {
	return &RecognitionSession{
		recognizer: recognizer,
		reporter:   reporter,
		delay:      delay,
	}
}

// Recognize runs one shot: clear the previous outcome, wait the visual
// pacing delay, ask the recognizer, then record the result and forward the
// reading to the reporting sink. Sink failures are logged and swallowed.
func (s *RecognitionSession) Recognize(ctx context.Context, imageName string) (*models.RecognitionResult, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return nil, ErrRecognitionInProgress
	}
	s.processing = true
	s.result = nil
	s.errMsg = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.processing = false
		s.mu.Unlock()
	}()

	// Pacing delay so the processing state is visible. Not a retry or a
	// backoff.
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		s.fail(ctx.Err())
		return nil, ctx.Err()
	}

	result, err := s.recognizer.RecognizeDetailed(ctx, imageName)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	s.result = result
	s.lastShotTime = timestamp
	s.history = append([]models.ShotHistoryEntry{{
		ID:          result.ImageName + "-" + timestamp,
		ImageName:   result.ImageName,
		PlateNumber: result.PlateNumber,
		Timestamp:   timestamp,
		IsValid:     result.IsValid,
	}}, s.history...)
	s.mu.Unlock()

	coords := result.Coordinates
	reading := models.PlateReading{
		PlateNumber: result.PlateNumber,
		ImageName:   result.ImageName,
		Timestamp:   timestamp,
		Coordinates: &coords,
	}
	if err := s.reporter.Report(ctx, reading); err != nil {
		log.Printf("[Sink] Forwarding reading for %s failed: %v", result.ImageName, err)
	}

	return result, nil
}

func (s *RecognitionSession) fail(err error) {
	msg := genericRecognitionError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// Reset clears the result and the error. The last shot timestamp and the
// history survive on purpose: they are provenance, not display state.
func (s *RecognitionSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
	s.errMsg = ""
}

// ClearHistory empties the shot history and nothing else.
func (s *RecognitionSession) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *RecognitionSession) Result() *models.RecognitionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LastError returns the inline error message, "" when there is none.
func (s *RecognitionSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *RecognitionSession) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// LastShotTime returns the RFC 3339 timestamp of the most recent completed
// shot, "" when none has completed yet.
func (s *RecognitionSession) LastShotTime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastShotTime
}

func (s *RecognitionSession) History() []models.ShotHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ShotHistoryEntry{}, s.history...)
}

// HistoryEntry looks up one past shot by its id.
func (s *RecognitionSession) HistoryEntry(id string) (models.ShotHistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.history {
		if entry.ID == id {
			return entry, true
		}
	}
	return models.ShotHistoryEntry{}, false
}
