// Package memory provides an in-process ports.Storage implementation used
// by tests and local development, avoiding a live Postgres dependency.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

// Store is a mutex-guarded in-memory Storage adapter.
type Store struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]domain.ReadingSession
	documents map[uuid.UUID]domain.Document
	qaPairs   []domain.QAPair
	notes     []domain.Note
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		sessions:  make(map[uuid.UUID]domain.ReadingSession),
		documents: make(map[uuid.UUID]domain.Document),
	}
}

// Seed inserts a session and its document, as test setup would.
func (s *Store) Seed(session domain.ReadingSession, document domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.documents[document.ID] = document
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (domain.ReadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ReadingSession{}, ports.NewNotFound("memory.GetSession", nil)
	}
	return session, nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.Document{}, ports.NewNotFound("memory.GetDocument", nil)
	}
	return doc, nil
}

func (s *Store) UpdateSessionProgress(ctx context.Context, id uuid.UUID, progressIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ports.NewNotFound("memory.UpdateSessionProgress", nil)
	}
	session.ProgressIndex = progressIndex
	s.sessions[id] = session
	return nil
}

func (s *Store) SaveQAPair(ctx context.Context, pair domain.QAPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qaPairs = append(s.qaPairs, pair)
	return nil
}

func (s *Store) SaveNote(ctx context.Context, note domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
	return nil
}

func (s *Store) SetDocumentTitle(ctx context.Context, documentID uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return ports.NewNotFound("memory.SetDocumentTitle", nil)
	}
	doc.Title = &title
	s.documents[documentID] = doc
	return nil
}

var _ ports.Storage = (*Store)(nil)
