// Package reader implements the reading task: the goroutine that walks a
// session's chunked document sentence by sentence, synthesizing speech for
// each and streaming it to the client, until the document ends, the session
// is paused, or an interruption cancels it.
package reader

import (
	"context"
	"log/slog"

	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/ports"
	"github.com/oduggan21/reading-assistant/internal/protocol"
	"github.com/oduggan21/reading-assistant/internal/sessionstate"
	"github.com/oduggan21/reading-assistant/internal/transport"
)

// Task runs one reading pass over a session's document. It is spawned fresh
// on every ResumeReading (and at session start), bound to the CancelToken
// installed on State at spawn time. Cancellation is checked at the top of
// every loop iteration and again after synthesis, before the audio frame is
// sent; an in-flight synthesis call is not interrupted.
type Task struct {
	state *sessionstate.State
	sink  transport.Sink
	tts   ports.TextToSpeech
	store ports.Storage
	log   *logger.Logger
}

// New builds a reader Task bound to the given session state, outbound sink,
// text-to-speech port, and storage port.
func New(state *sessionstate.State, sink transport.Sink, tts ports.TextToSpeech, store ports.Storage, log *logger.Logger) *Task {
	return &Task{state: state, sink: sink, tts: tts, store: store, log: log}
}

// Run drives the reading loop until the document is exhausted, the bound
// cancel token fires, or an unrecoverable send failure occurs. It never
// returns an error: a send failure is logged and ends the loop, while a
// synthesis failure (the same sentence is tried again) or a progress
// persistence failure is logged and the loop goes on. The session's Mode is
// left for the controller to reconcile.
func (t *Task) Run(ctx context.Context, token sessionstate.CancelToken) {
	if err := t.sink.SendText(protocol.Simple(protocol.ServerReadingStarted)); err != nil {
		t.log.LogError(ctx, err, "reader: failed to send reading_started")
		return
	}

	for {
		select {
		case <-token.Done():
			return
		default:
		}

		snap, ok := t.state.ReaderSnapshot()
		if !ok {
			t.sendReadingEnded(ctx)
			return
		}

		audio, err := t.tts.Synthesize(ctx, snap.SentenceToRead)
		if err != nil {
			t.log.LogError(ctx, err, "reader: synthesis failed, retrying", slog.Int("sentence_index", snap.Index))
			select {
			case <-token.Done():
				return
			default:
				continue
			}
		}

		select {
		case <-token.Done():
			return
		default:
		}

		if err := t.sink.SendBinary(audio); err != nil {
			t.log.LogError(ctx, err, "reader: failed to send audio frame")
			return
		}

		t.state.AdvanceProgress(snap.Index)

		if err := t.store.UpdateSessionProgress(ctx, snap.SessionID, snap.Index+1); err != nil {
			t.log.LogError(ctx, err, "reader: failed to persist progress, continuing", slog.Int("sentence_index", snap.Index+1))
		}
	}
}

func (t *Task) sendReadingEnded(ctx context.Context) {
	if err := t.sink.SendText(protocol.Simple(protocol.ServerReadingEnded)); err != nil {
		t.log.LogError(ctx, err, "reader: failed to send reading_ended")
	}
}
