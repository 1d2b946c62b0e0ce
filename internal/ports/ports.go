// Package ports defines the service contracts the session core depends on.
// Concrete implementations live under internal/adapters and internal/storage;
// the core only ever imports this package, never an adapter directly.
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
)

// Kind classifies a PortError so callers can branch on it without depending
// on any adapter-specific error type.
type Kind int

const (
	// Unexpected covers anything that isn't NotFound or Unauthorized —
	// network failures, malformed adapter responses, timeouts.
	Unexpected Kind = iota
	NotFound
	Unauthorized
)

// PortError is the error type every port method returns on failure.
type PortError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PortError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PortError) Unwrap() error { return e.Err }

func NewNotFound(op string, err error) *PortError {
	return &PortError{Kind: NotFound, Op: op, Err: err}
}

func NewUnauthorized(op string, err error) *PortError {
	return &PortError{Kind: Unauthorized, Op: op, Err: err}
}

func NewUnexpected(op string, err error) *PortError {
	return &PortError{Kind: Unexpected, Op: op, Err: err}
}

// Is lets callers use errors.Is(err, ports.ErrNotFound) etc.
func (e *PortError) Is(target error) bool {
	var pe *PortError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind && pe.Op == ""
	}
	return false
}

// Sentinel values for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, ports.ErrNotFound).
var (
	ErrNotFound     = &PortError{Kind: NotFound}
	ErrUnauthorized = &PortError{Kind: Unauthorized}
	ErrUnexpected   = &PortError{Kind: Unexpected}
)

// Storage is the persistence boundary: sessions, documents, QA pairs, notes.
type Storage interface {
	GetSession(ctx context.Context, id uuid.UUID) (domain.ReadingSession, error)
	GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error)
	UpdateSessionProgress(ctx context.Context, id uuid.UUID, progressIndex int) error
	SaveQAPair(ctx context.Context, pair domain.QAPair) error
	SaveNote(ctx context.Context, note domain.Note) error
	SetDocumentTitle(ctx context.Context, documentID uuid.UUID, title string) error
}

// SpeechToText transcribes one fully captured utterance.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TextToSpeech synthesizes one sentence into an opaque, client-playable
// audio payload. The core never inspects the returned bytes.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// QuestionAnswering answers a question given document context. The returned
// text's final line carries the RELATEDNESS classification tag (see
// internal/qa for parsing); the adapter does not strip it.
type QuestionAnswering interface {
	Answer(ctx context.Context, question, context string) (string, error)
}

// NoteGeneration summarizes a completed QAPair, or signals SkipNote.
type NoteGeneration interface {
	Summarize(ctx context.Context, pair domain.QAPair) (string, error)
}

// TitleGeneration produces a short title for a document from its text.
type TitleGeneration interface {
	GenerateTitle(ctx context.Context, documentText string) (string, error)
}

// SkipNote is the literal sentinel the note-generation port returns (after
// trimming) to mean "do not persist a note for this exchange".
const SkipNote = "SKIP_NOTE"
