// Package voskengine runs speech recognition in-process through the Vosk
// library's Go binding.
package voskengine

import (
	"context"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"scribe/internal/recognizer"
)

var quietOnce sync.Once

// Engine holds one loaded model. Loading is the expensive step; sessions
// created from the engine share the loaded model and are cheap.
type Engine struct {
	model *vosk.VoskModel
}

// New loads the model directory into memory.
func New(modelDir string) (*Engine, error) {
	quietOnce.Do(func() {
		vosk.SetLogLevel(-1)
	})
	model, err := vosk.NewModel(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelDir, err)
	}
	return &Engine{model: model}, nil
}

// NewSession creates one streaming decode context with word-level timing
// enabled.
func (e *Engine) NewSession(_ context.Context) (recognizer.Session, error) {
	rec, err := vosk.NewRecognizer(e.model, float64(recognizer.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("create recognizer: %w", err)
	}
	rec.SetWords(1)
	return &session{rec: rec}, nil
}

// Close releases the loaded model. Sessions must be closed first.
func (e *Engine) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

type session struct {
	rec *vosk.VoskRecognizer
}

func (s *session) AcceptWaveform(chunk []byte) (bool, []byte, error) {
	if s.rec.AcceptWaveform(chunk) != 0 {
		return true, []byte(s.rec.Result()), nil
	}
	return false, nil, nil
}

func (s *session) FinalResult() ([]byte, error) {
	return []byte(s.rec.FinalResult()), nil
}

func (s *session) Close() error {
	if s.rec != nil {
		s.rec.Free()
		s.rec = nil
	}
	return nil
}
