// Package domain defines the pure, core data structures for the reading
// assistant. These types are independent of any database or wire format.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. Created outside the core by the
// (out of scope) signup/auth surface.
type User struct {
	ID    uuid.UUID
	Email string // empty for users that predate email capture
}

// Document is an immutable piece of text uploaded by a user, optionally
// titled by the title-generation port once a session has started reading it.
type Document struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	OriginalText string
	Title        *string
	CreatedAt    time.Time
}

// ReadingSession is the durable record of one user's ongoing relationship
// with one document. ProgressIndex is the source of truth on reconnect and
// must always satisfy 0 <= ProgressIndex <= total sentence count.
type ReadingSession struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	DocumentID     uuid.UUID
	ProgressIndex  int
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// QAPair is one completed question/answer exchange within a session.
type QAPair struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	QuestionText string
	AnswerText   string
	CreatedAt    time.Time
}

// Note is a summarized record derived from a QAPair. At most one Note exists
// per QAPair; the note-generation port may elide it entirely (SkipNote).
type Note struct {
	ID                uuid.UUID
	SessionID         uuid.UUID
	GeneratedNoteText string
	CreatedAt         time.Time
}
