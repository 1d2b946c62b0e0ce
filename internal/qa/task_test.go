package qa

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/protocol"
	"github.com/oduggan21/reading-assistant/internal/sessionstate"
)

type fakeSTT struct{ transcript string }

func (f fakeSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.transcript, nil
}

type fakeTTS struct{}

func (fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return []byte(text), nil
}

type fakeQA struct{ answer string }

func (f fakeQA) Answer(ctx context.Context, question, qaContext string) (string, error) {
	return f.answer, nil
}

type fakeNotes struct{ summary string }

func (f fakeNotes) Summarize(ctx context.Context, pair domain.QAPair) (string, error) {
	return f.summary, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	savedPair *domain.QAPair
	savedNote *domain.Note
	noteWG    *sync.WaitGroup
}

func (f *fakeStorage) GetSession(ctx context.Context, id uuid.UUID) (domain.ReadingSession, error) {
	return domain.ReadingSession{}, nil
}
func (f *fakeStorage) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return domain.Document{}, nil
}
func (f *fakeStorage) UpdateSessionProgress(ctx context.Context, id uuid.UUID, progressIndex int) error {
	return nil
}
func (f *fakeStorage) SaveQAPair(ctx context.Context, pair domain.QAPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := pair
	f.savedPair = &p
	return nil
}
func (f *fakeStorage) SaveNote(ctx context.Context, note domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := note
	f.savedNote = &n
	if f.noteWG != nil {
		f.noteWG.Done()
	}
	return nil
}
func (f *fakeStorage) SetDocumentTitle(ctx context.Context, documentID uuid.UUID, title string) error {
	return nil
}

type fakeSink struct {
	mu       sync.Mutex
	texts    []protocol.ServerType
	binaries [][]byte
}

func (s *fakeSink) SendText(msg protocol.ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, msg.Type)
	return nil
}
func (s *fakeSink) SendBinary(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binaries = append(s.binaries, frame)
	return nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{Format: "text"})
}

func TestRunResumeIntent(t *testing.T) {
	state := &sessionstate.State{SessionID: uuid.New()}
	state.AppendAudio([]byte("audio"))

	sink := &fakeSink{}
	store := &fakeStorage{}
	task := New(state, sink, fakeSTT{transcript: "please continue reading"}, fakeTTS{}, fakeQA{}, fakeNotes{}, store, newTestLogger())

	outcome := task.Run(context.Background())
	if outcome != OutcomeResume {
		t.Fatalf("outcome = %v, want OutcomeResume", outcome)
	}
	wantTexts := []protocol.ServerType{protocol.ServerAnsweringStarted}
	if len(sink.texts) != len(wantTexts) || sink.texts[0] != wantTexts[0] {
		t.Errorf("texts = %v, want %v", sink.texts, wantTexts)
	}
	if store.savedPair != nil {
		t.Error("expected no qa pair persisted on resume intent")
	}
}

func TestRunEmptyAudioBuffer(t *testing.T) {
	state := &sessionstate.State{SessionID: uuid.New()}
	task := New(state, &fakeSink{}, fakeSTT{}, fakeTTS{}, fakeQA{}, fakeNotes{}, &fakeStorage{}, newTestLogger())

	if got := task.Run(context.Background()); got != OutcomeEmpty {
		t.Fatalf("outcome = %v, want OutcomeEmpty", got)
	}
}

func TestRunAnsweredRelated(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	state := &sessionstate.State{SessionID: uuid.New()}
	state.AppendAudio([]byte("audio"))

	sink := &fakeSink{}
	store := &fakeStorage{noteWG: &wg}
	task := New(state, sink, fakeSTT{transcript: "what is this about"}, fakeTTS{}, fakeQA{answer: "It is about testing.\nRELATEDNESS: RELATED"}, fakeNotes{summary: "a note"}, store, newTestLogger())

	outcome := task.Run(context.Background())
	if outcome != OutcomeAnswered {
		t.Fatalf("outcome = %v, want OutcomeAnswered", outcome)
	}

	wantTexts := []protocol.ServerType{protocol.ServerAnsweringStarted, protocol.ServerAnsweringEnded}
	if len(sink.texts) != len(wantTexts) || sink.texts[0] != wantTexts[0] || sink.texts[1] != wantTexts[1] {
		t.Errorf("texts = %v, want %v", sink.texts, wantTexts)
	}
	if len(sink.binaries) == 0 {
		t.Error("expected at least one synthesized audio frame")
	}
	if store.savedPair == nil || store.savedPair.AnswerText != "It is about testing." {
		t.Errorf("savedPair = %+v", store.savedPair)
	}

	wg.Wait()
	if store.savedNote == nil || store.savedNote.GeneratedNoteText != "a note" {
		t.Errorf("savedNote = %+v", store.savedNote)
	}
}

func TestRunAnsweredUnrelatedUsesApology(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	state := &sessionstate.State{SessionID: uuid.New()}
	state.AppendAudio([]byte("audio"))

	store := &fakeStorage{noteWG: &wg}
	task := New(state, &fakeSink{}, fakeSTT{transcript: "what color is the number seven"}, fakeTTS{}, fakeQA{answer: "Unrelated content.\nRELATEDNESS: UNRELATED"}, fakeNotes{summary: "note"}, store, newTestLogger())

	task.Run(context.Background())

	if store.savedPair == nil {
		t.Fatal("expected a qa pair to be saved")
	}
	if store.savedPair.AnswerText != protocol.UnrelatedApology {
		t.Errorf("AnswerText = %q, want apology", store.savedPair.AnswerText)
	}
	wg.Wait()
}
