package sessionstate

import (
	"testing"

	"github.com/google/uuid"
)

func newTestState(n int) *State {
	doc := make([]string, n)
	for i := range doc {
		doc[i] = "sentence."
	}
	return &State{ChunkedDocument: doc, SessionID: uuid.New()}
}

func TestReaderSnapshotEndOfDocument(t *testing.T) {
	s := newTestState(3)
	s.ProgressIndex = 3

	_, ok := s.ReaderSnapshot()
	if ok {
		t.Fatal("expected ok=false once progress reaches document end")
	}
}

func TestAdvanceProgress(t *testing.T) {
	s := newTestState(3)
	s.AdvanceProgress(0)
	if s.ProgressIndex != 1 {
		t.Errorf("ProgressIndex = %d, want 1", s.ProgressIndex)
	}
}

func TestContextWindowClamping(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		progressIndex int
		wantStart     int
		wantEnd       int
	}{
		{"near start", 30, 0, 0, 10},
		{"near end", 30, 28, 20, 30},
		{"middle", 30, 15, 10, 20},
		{"shorter than window", 6, 3, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(tt.total)
			for i := range s.ChunkedDocument {
				s.ChunkedDocument[i] = uuid.NewString() + "."
			}
			s.ProgressIndex = tt.progressIndex

			want := joinSentences(s.ChunkedDocument[tt.wantStart:tt.wantEnd])
			got, _, _, hasPrev := s.ContextWindow()
			if hasPrev {
				t.Errorf("hasPrev = true, want false with no recorded turn")
			}
			if got != want {
				t.Errorf("ContextWindow() = %q, want %q", got, want)
			}
		})
	}
}

func TestContextWindowIncludesPreviousTurn(t *testing.T) {
	s := newTestState(20)
	s.RecordTurn("what is this about", "it is about testing")

	_, q, a, hasPrev := s.ContextWindow()
	if !hasPrev {
		t.Fatal("expected hasPrev=true after RecordTurn")
	}
	if q != "what is this about" || a != "it is about testing" {
		t.Errorf("got q=%q a=%q", q, a)
	}
}

func TestCancelTokenFreshPerSpawn(t *testing.T) {
	s := &State{}
	first := s.InstallFreshCancelToken()
	first.Cancel()

	second := s.InstallFreshCancelToken()
	if second.Cancelled() {
		t.Fatal("freshly installed token must not be cancelled")
	}
	if !first.Cancelled() {
		t.Fatal("the discarded token should remain cancelled")
	}
}

func TestAudioBufferDrain(t *testing.T) {
	s := &State{}
	s.AppendAudio([]byte{1, 2})
	s.AppendAudio([]byte{3})

	got := s.DrainAudioBuffer()
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	if len(s.DrainAudioBuffer()) != 0 {
		t.Fatal("buffer should be empty after drain")
	}
}
