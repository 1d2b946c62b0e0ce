package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

func TestGetSessionNotFound(t *testing.T) {
	store := New()
	_, err := store.GetSession(context.Background(), uuid.New())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSessionProgressRoundTrip(t *testing.T) {
	store := New()
	sessionID := uuid.New()
	docID := uuid.New()
	store.Seed(domain.ReadingSession{ID: sessionID, DocumentID: docID}, domain.Document{ID: docID})

	if err := store.UpdateSessionProgress(context.Background(), sessionID, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProgressIndex != 5 {
		t.Errorf("ProgressIndex = %d, want 5", got.ProgressIndex)
	}
}

func TestSetDocumentTitle(t *testing.T) {
	store := New()
	docID := uuid.New()
	store.Seed(domain.ReadingSession{}, domain.Document{ID: docID})

	if err := store.SetDocumentTitle(context.Background(), docID, "A Title"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, _ := store.GetDocument(context.Background(), docID)
	if doc.Title == nil || *doc.Title != "A Title" {
		t.Errorf("Title = %v", doc.Title)
	}
}
