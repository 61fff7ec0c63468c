// Package voskserver streams recognition through a remote vosk-server
// instance over a websocket connection.
package voskserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"scribe/internal/recognizer"
)

// Engine dials one websocket connection per session, so concurrent runs get
// independent decode contexts on the server side.
type Engine struct {
	url    string
	dialer *websocket.Dialer
}

// New returns an engine for the given ws:// or wss:// URL. The server is not
// contacted until a session is created.
func New(serverURL string) *Engine {
	return &Engine{url: serverURL, dialer: websocket.DefaultDialer}
}

// NewSession dials the server and announces the stream parameters.
func (e *Engine) NewSession(ctx context.Context) (recognizer.Session, error) {
	conn, _, err := e.dialer.DialContext(ctx, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial vosk server %s: %w", e.url, err)
	}
	setup := map[string]any{
		"config": map[string]any{
			"sample_rate": recognizer.SampleRate,
			"words":       1,
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send recognizer config: %w", err)
	}
	return &session{conn: conn}, nil
}

func (e *Engine) Close() error { return nil }

type session struct {
	conn *websocket.Conn
}

// completionProbe detects partial responses by key presence; the server
// answers silence with {"partial": ""}.
type completionProbe struct {
	Partial *string `json:"partial"`
}

// AcceptWaveform sends one chunk and reads the server's one response for it.
// Responses that are not partials are handed back as completion payloads;
// payloads that fail deeper parsing are the caller's concern.
func (s *session) AcceptWaveform(chunk []byte) (bool, []byte, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return false, nil, fmt.Errorf("send audio chunk: %w", err)
	}
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return false, nil, fmt.Errorf("read recognizer response: %w", err)
	}
	var probe completionProbe
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Partial != nil {
		return false, nil, nil
	}
	return true, payload, nil
}

// FinalResult asks the server to flush the stream and returns its last
// response.
func (s *session) FinalResult() ([]byte, error) {
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return nil, fmt.Errorf("send end of stream: %w", err)
	}
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read final result: %w", err)
	}
	return payload, nil
}

func (s *session) Close() error {
	return s.conn.Close()
}
