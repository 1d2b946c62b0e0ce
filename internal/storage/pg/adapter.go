package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

// Adapter implements ports.Storage against a Postgres connection pool using
// raw SQL, the way internal/deepr/db_storage.go talks to Postgres in the
// teacher repo rather than through an ORM or a generated query layer.
type Adapter struct {
	db *sql.DB
}

// NewAdapter wraps an open connection pool.
func NewAdapter(db *Database) *Adapter {
	return &Adapter{db: db.DB}
}

func (a *Adapter) GetSession(ctx context.Context, id uuid.UUID) (domain.ReadingSession, error) {
	const q = `
		SELECT id, user_id, document_id, progress_index, created_at, last_accessed_at
		FROM reading_sessions
		WHERE id = $1`

	var s domain.ReadingSession
	err := a.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.UserID, &s.DocumentID, &s.ProgressIndex, &s.CreatedAt, &s.LastAccessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReadingSession{}, ports.NewNotFound("pg.GetSession", err)
	}
	if err != nil {
		return domain.ReadingSession{}, ports.NewUnexpected("pg.GetSession", err)
	}
	return s, nil
}

func (a *Adapter) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	const q = `
		SELECT id, user_id, original_text, title, created_at
		FROM documents
		WHERE id = $1`

	var d domain.Document
	var title sql.NullString
	err := a.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.UserID, &d.OriginalText, &title, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, ports.NewNotFound("pg.GetDocument", err)
	}
	if err != nil {
		return domain.Document{}, ports.NewUnexpected("pg.GetDocument", err)
	}
	if title.Valid {
		d.Title = &title.String
	}
	return d, nil
}

func (a *Adapter) UpdateSessionProgress(ctx context.Context, id uuid.UUID, progressIndex int) error {
	const q = `
		UPDATE reading_sessions
		SET progress_index = $2, last_accessed_at = $3
		WHERE id = $1`

	res, err := a.db.ExecContext(ctx, q, id, progressIndex, time.Now().UTC())
	if err != nil {
		return ports.NewUnexpected("pg.UpdateSessionProgress", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.NewNotFound("pg.UpdateSessionProgress", fmt.Errorf("no session with id %s", id))
	}
	return nil
}

func (a *Adapter) SaveQAPair(ctx context.Context, pair domain.QAPair) error {
	const q = `
		INSERT INTO qa_pairs (id, session_id, question_text, answer_text, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if pair.ID == uuid.Nil {
		pair.ID = uuid.New()
	}
	_, err := a.db.ExecContext(ctx, q, pair.ID, pair.SessionID, pair.QuestionText, pair.AnswerText, time.Now().UTC())
	if err != nil {
		return ports.NewUnexpected("pg.SaveQAPair", err)
	}
	return nil
}

func (a *Adapter) SaveNote(ctx context.Context, note domain.Note) error {
	const q = `
		INSERT INTO notes (id, session_id, generated_note_text, created_at)
		VALUES ($1, $2, $3, $4)`

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	_, err := a.db.ExecContext(ctx, q, note.ID, note.SessionID, note.GeneratedNoteText, time.Now().UTC())
	if err != nil {
		return ports.NewUnexpected("pg.SaveNote", err)
	}
	return nil
}

func (a *Adapter) SetDocumentTitle(ctx context.Context, documentID uuid.UUID, title string) error {
	const q = `UPDATE documents SET title = $2 WHERE id = $1`

	res, err := a.db.ExecContext(ctx, q, documentID, title)
	if err != nil {
		return ports.NewUnexpected("pg.SetDocumentTitle", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.NewNotFound("pg.SetDocumentTitle", fmt.Errorf("no document with id %s", documentID))
	}
	return nil
}

var _ ports.Storage = (*Adapter)(nil)
