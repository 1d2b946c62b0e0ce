// Package sessionstate defines the per-connection mutable record shared,
// under a single mutex, between the session controller, the reader task, and
// the QA task.
package sessionstate

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Mode is one of the session controller's states (spec §4.G).
type Mode string

const (
	Reading              Mode = "reading"
	InterruptedListening Mode = "interrupted_listening"
	ProcessingQuestion   Mode = "processing_question"
	Answering            Mode = "answering"
	Paused               Mode = "paused"
)

// CancelToken is a single-shot cooperative cancellation signal, analogous to
// tokio_util::sync::CancellationToken in the original implementation. A new
// token must be installed on every reader (re)spawn — cancelled tokens are
// never reused.
type CancelToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelToken returns a fresh, uncancelled token.
func NewCancelToken() CancelToken {
	ctx, cancel := context.WithCancel(context.Background())
	return CancelToken{ctx: ctx, cancel: cancel}
}

// Cancel signals cancellation. Safe to call more than once.
func (t CancelToken) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Cancelled reports whether Cancel has been called on this token.
func (t CancelToken) Cancelled() bool {
	if t.ctx == nil {
		return true
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token is cancelled, suitable for
// select statements.
func (t CancelToken) Done() <-chan struct{} {
	if t.ctx == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.ctx.Done()
}

// State is the live, in-memory record for one duplex connection. All reads
// and writes of its fields must hold mu; the guard is acquired only for the
// brief duration of a field read or write, never across a suspension point
// such as a network or model call.
type State struct {
	mu sync.Mutex

	UserID          uuid.UUID
	DocumentID      uuid.UUID
	SessionID       uuid.UUID
	ChunkedDocument []string
	ProgressIndex   int
	Mode            Mode
	AudioBuffer     []byte
	LastQuestion    *string
	LastAnswer      *string
	CancelToken     CancelToken
}

// WithLock runs fn while holding the state mutex. fn must not block on I/O.
func (s *State) WithLock(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Snapshot is an immutable read of the fields the reader task needs each
// loop iteration.
type Snapshot struct {
	Index          int
	TotalSentences int
	SentenceToRead string
	SessionID      uuid.UUID
}

// ReaderSnapshot reads the current progress index and sentence, without
// mutating anything. ok is false once progress has reached the end of the
// document.
func (s *State) ReaderSnapshot() (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.ChunkedDocument)
	if s.ProgressIndex >= n {
		return Snapshot{Index: s.ProgressIndex, TotalSentences: n, SessionID: s.SessionID}, false
	}
	return Snapshot{
		Index:          s.ProgressIndex,
		TotalSentences: n,
		SentenceToRead: s.ChunkedDocument[s.ProgressIndex],
		SessionID:      s.SessionID,
	}, true
}

// AdvanceProgress sets ProgressIndex to i+1, where i is the index that was
// just read and sent. Called only by the reader task, only after the
// corresponding audio frame has been enqueued to the client.
func (s *State) AdvanceProgress(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProgressIndex = i + 1
}

// DrainAudioBuffer empties AudioBuffer and returns its previous contents.
func (s *State) DrainAudioBuffer() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.AudioBuffer
	s.AudioBuffer = nil
	return buf
}

// AppendAudio appends bytes to AudioBuffer. Called from the transport's read
// loop while in InterruptedListening mode.
func (s *State) AppendAudio(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AudioBuffer = append(s.AudioBuffer, b...)
}

// SetMode sets the current mode under the guard.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mode = m
}

// SessionIdentifier reads the session ID under the guard.
func (s *State) SessionIdentifier() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SessionID
}

// CurrentMode reads the current mode under the guard.
func (s *State) CurrentMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Mode
}

// ContextWindow returns the 10-sentence neighborhood of the document centered
// on the current progress index, clamped at both ends, plus the previous
// question/answer turn when present (spec §4.F / §8 boundary behaviors).
func (s *State) ContextWindow() (window string, prevQuestion, prevAnswer string, hasPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.ChunkedDocument)
	i := s.ProgressIndex

	start := 0
	switch {
	case i < 5:
		start = 0
	case i+5 >= n:
		start = n - 10
		if start < 0 {
			start = 0
		}
	default:
		start = i - 5
	}
	end := start + 10
	if end > n {
		end = n
	}

	sentences := s.ChunkedDocument[start:end]
	window = joinSentences(sentences)

	if s.LastQuestion != nil && s.LastAnswer != nil {
		return window, *s.LastQuestion, *s.LastAnswer, true
	}
	return window, "", "", false
}

func joinSentences(sentences []string) string {
	total := 0
	for _, sentence := range sentences {
		total += len(sentence) + 1
	}
	out := make([]byte, 0, total)
	for i, sentence := range sentences {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, sentence...)
	}
	return string(out)
}

// RecordTurn stores the most recent question/answer pair for context
// carry-over into the next QA cycle.
func (s *State) RecordTurn(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastQuestion = &question
	s.LastAnswer = &answer
}

// InstallFreshCancelToken replaces CancelToken with a brand new, uncancelled
// one and returns it. The old token is discarded, never reused.
func (s *State) InstallFreshCancelToken() CancelToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CancelToken = NewCancelToken()
	return s.CancelToken
}

// CurrentCancelToken reads the active cancel token under the guard.
func (s *State) CurrentCancelToken() CancelToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CancelToken
}
