package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/ports"
	"github.com/oduggan21/reading-assistant/internal/protocol"
)

type fakeSink struct {
	mu    sync.Mutex
	texts []protocol.ServerType
}

func (s *fakeSink) SendText(msg protocol.ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, msg.Type)
	return nil
}
func (s *fakeSink) SendBinary(frame []byte) error { return nil }

func (s *fakeSink) hasText(t protocol.ServerType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.texts {
		if got == t {
			return true
		}
	}
	return false
}

type fakeStorage struct {
	session domain.ReadingSession
	doc     domain.Document
}

func (f *fakeStorage) GetSession(ctx context.Context, id uuid.UUID) (domain.ReadingSession, error) {
	return f.session, nil
}
func (f *fakeStorage) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return f.doc, nil
}
func (f *fakeStorage) UpdateSessionProgress(ctx context.Context, id uuid.UUID, progressIndex int) error {
	return nil
}
func (f *fakeStorage) SaveQAPair(ctx context.Context, pair domain.QAPair) error { return nil }
func (f *fakeStorage) SaveNote(ctx context.Context, note domain.Note) error     { return nil }
func (f *fakeStorage) SetDocumentTitle(ctx context.Context, documentID uuid.UUID, title string) error {
	return nil
}

type fakeTTS struct{}

func (fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) { return []byte(text), nil }

type fakeSTT struct{ transcript string }

func (f fakeSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.transcript, nil
}

type fakeQA struct{}

func (fakeQA) Answer(ctx context.Context, question, qaContext string) (string, error) {
	return "An answer.\nRELATEDNESS: RELATED", nil
}

type fakeNotes struct{}

func (fakeNotes) Summarize(ctx context.Context, pair domain.QAPair) (string, error) {
	return ports.SkipNote, nil
}

type fakeTitle struct{}

func (fakeTitle) GenerateTitle(ctx context.Context, documentText string) (string, error) {
	return "A Title", nil
}

var testUserID = uuid.New().String()

func newTestSession(docText string) (*Session, *fakeSink, uuid.UUID) {
	sessionID := uuid.New()
	docID := uuid.New()
	store := &fakeStorage{
		session: domain.ReadingSession{ID: sessionID, DocumentID: docID, UserID: uuid.MustParse(testUserID)},
		doc:     domain.Document{ID: docID, OriginalText: docText},
	}
	sink := &fakeSink{}
	adapters := Adapters{
		Storage: store,
		STT:     fakeSTT{transcript: "what is this about"},
		TTS:     fakeTTS{},
		QA:      fakeQA{},
		Notes:   fakeNotes{},
		Title:   fakeTitle{},
	}
	return New(sink, adapters, logger.New(logger.Config{Format: "text"}), testUserID), sink, sessionID
}

func encodeInit(sessionID uuid.UUID) []byte {
	b, _ := protocol.Encode(protocol.ServerMessage{Type: "init", SessionID: sessionID})
	return b
}

func TestInitStartsReading(t *testing.T) {
	s, sink, sessionID := newTestSession("One. Two. Three.")
	s.HandleText(context.Background(), encodeInit(sessionID))
	s.Wait()

	if !sink.hasText(protocol.ServerSessionInitialized) {
		t.Error("expected session_initialized")
	}
	if !sink.hasText(protocol.ServerReadingStarted) {
		t.Error("expected reading_started")
	}
	if !sink.hasText(protocol.ServerReadingEnded) {
		t.Error("expected reading_ended once document is exhausted")
	}
}

func TestInitUnauthorizedUserMismatch(t *testing.T) {
	sessionID := uuid.New()
	docID := uuid.New()
	store := &fakeStorage{
		session: domain.ReadingSession{ID: sessionID, DocumentID: docID, UserID: uuid.New()},
		doc:     domain.Document{ID: docID, OriginalText: "One. Two."},
	}
	sink := &fakeSink{}
	adapters := Adapters{
		Storage: store,
		STT:     fakeSTT{},
		TTS:     fakeTTS{},
		QA:      fakeQA{},
		Notes:   fakeNotes{},
		Title:   fakeTitle{},
	}
	s := New(sink, adapters, logger.New(logger.Config{Format: "text"}), testUserID)

	s.HandleText(context.Background(), encodeInit(sessionID))
	s.Wait()

	if sink.hasText(protocol.ServerSessionInitialized) {
		t.Error("expected no session_initialized for a mismatched user")
	}
	if !sink.hasText(protocol.ServerError) {
		t.Error("expected an error frame for a mismatched user")
	}
}

func TestInterruptWithQuestionRunsQA(t *testing.T) {
	s, sink, sessionID := newTestSession(bigDocument())
	s.HandleText(context.Background(), encodeInit(sessionID))

	time.Sleep(10 * time.Millisecond)
	s.HandleText(context.Background(), mustEncode(t, `{"type":"interrupt_started"}`))
	s.HandleBinary([]byte("captured audio"))
	s.HandleText(context.Background(), mustEncode(t, `{"type":"interrupt_ended"}`))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sink.hasText(protocol.ServerAnsweringEnded) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Wait()

	if !sink.hasText(protocol.ServerAnsweringStarted) || !sink.hasText(protocol.ServerAnsweringEnded) {
		t.Errorf("texts = %v", sink.texts)
	}
}

func TestPauseThenResume(t *testing.T) {
	s, sink, sessionID := newTestSession(bigDocument())
	s.HandleText(context.Background(), encodeInit(sessionID))
	time.Sleep(10 * time.Millisecond)

	s.HandleText(context.Background(), mustEncode(t, `{"type":"pause_reading"}`))
	s.Wait()
	if !sink.hasText(protocol.ServerReadingPaused) {
		t.Fatal("expected reading_paused")
	}

	s.HandleText(context.Background(), mustEncode(t, `{"type":"resume_reading"}`))
	s.Wait()
}

func mustEncode(t *testing.T, raw string) []byte {
	t.Helper()
	return []byte(raw)
}

func bigDocument() string {
	doc := ""
	for i := 0; i < 30; i++ {
		doc += "Sentence number goes here. "
	}
	return doc
}
