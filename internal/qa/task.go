package qa

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oduggan21/reading-assistant/internal/chunker"
	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/ports"
	"github.com/oduggan21/reading-assistant/internal/protocol"
	"github.com/oduggan21/reading-assistant/internal/sessionstate"
	"github.com/oduggan21/reading-assistant/internal/transport"
)

// Outcome distinguishes the three ways a QA cycle can end: it answered a
// question, it recognized a resume-reading intent, or the transcript was
// empty/noise and nothing happened. A QA-LLM failure is also reported as
// OutcomeAnswered (answering_ended is still sent); an empty audio buffer, a
// transcription failure, or a failed answering_started send is reported as
// OutcomeEmpty.
type Outcome int

const (
	OutcomeAnswered Outcome = iota
	OutcomeResume
	OutcomeEmpty
)

// Task runs one question-answering cycle for an interruption: drain the
// captured audio, transcribe it, decide resume-vs-question, and — for a
// genuine question — answer, synthesize, and record a note in the
// background.
type Task struct {
	state   *sessionstate.State
	sink    transport.Sink
	stt     ports.SpeechToText
	tts     ports.TextToSpeech
	qallm   ports.QuestionAnswering
	notellm ports.NoteGeneration
	store   ports.Storage
	log     *logger.Logger
}

// New builds a QA Task bound to its session state and ports.
func New(state *sessionstate.State, sink transport.Sink, stt ports.SpeechToText, tts ports.TextToSpeech, qallm ports.QuestionAnswering, notellm ports.NoteGeneration, store ports.Storage, log *logger.Logger) *Task {
	return &Task{state: state, sink: sink, stt: stt, tts: tts, qallm: qallm, notellm: notellm, store: store, log: log}
}

// Run executes one full QA cycle and reports how it ended.
func (t *Task) Run(ctx context.Context) Outcome {
	if err := t.sink.SendText(protocol.Simple(protocol.ServerAnsweringStarted)); err != nil {
		t.log.LogError(ctx, err, "qa: failed to send answering_started")
		return OutcomeEmpty
	}

	audio := t.state.DrainAudioBuffer()
	if len(audio) == 0 {
		return OutcomeEmpty
	}

	transcript, err := t.stt.Transcribe(ctx, audio)
	if err != nil {
		t.log.LogError(ctx, err, "qa: transcription failed")
		return OutcomeEmpty
	}
	if transcript == "" {
		return OutcomeEmpty
	}

	if IsResumeIntent(transcript) {
		return OutcomeResume
	}

	docWindow, prevQuestion, prevAnswer, hasPrev := t.state.ContextWindow()
	qaContext := docWindow
	if hasPrev {
		qaContext = docWindow + "\n\nPREVIOUS Q&A:\nQ: " + prevQuestion + "\nA: " + prevAnswer
	}

	rawAnswer, err := t.qallm.Answer(ctx, transcript, qaContext)
	if err != nil {
		t.log.LogError(ctx, err, "qa: question answering failed")
		t.sendAnsweringEnded(ctx)
		return OutcomeAnswered
	}

	classification := ParseClassification(rawAnswer)
	answerText := classification.Text
	if !classification.Related {
		answerText = protocol.UnrelatedApology
	}
	answerText = TruncateSentences(StripCitations(answerText), 2)

	t.state.RecordTurn(transcript, answerText)

	sessionID := t.state.SessionIdentifier()
	pair := domain.QAPair{
		ID:           uuid.New(),
		SessionID:    sessionID,
		QuestionText: transcript,
		AnswerText:   answerText,
	}
	if err := t.store.SaveQAPair(ctx, pair); err != nil {
		t.log.LogError(ctx, err, "qa: failed to persist qa pair")
	}

	go t.generateAndSaveNote(context.WithoutCancel(ctx), pair)

	if err := t.synthesizeAndSend(ctx, answerText); err != nil {
		t.log.LogError(ctx, err, "qa: failed to synthesize or send answer")
	}

	t.sendAnsweringEnded(ctx)
	return OutcomeAnswered
}

// synthesizeAndSend splits answerText into sentences, synthesizes each one
// concurrently, and sends the resulting audio frames to the client in
// sentence order — order-preserving fan-out/gather, mirroring the teacher's
// pattern of spawning independent background work and joining in sequence
// (internal/request_tracking/service.go's worker pool) adapted here to a
// bounded, per-answer group instead of a long-lived pool.
func (t *Task) synthesizeAndSend(ctx context.Context, answerText string) error {
	sentences := chunker.Chunk(answerText)
	if len(sentences) == 0 {
		return nil
	}

	frames := make([][]byte, len(sentences))
	g, gctx := errgroup.WithContext(ctx)
	for i, sentence := range sentences {
		i, sentence := i, sentence
		g.Go(func() error {
			audio, err := t.tts.Synthesize(gctx, sentence)
			if err != nil {
				return err
			}
			frames[i] = audio
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, frame := range frames {
		if err := t.sink.SendBinary(frame); err != nil {
			return err
		}
	}
	return nil
}

// generateAndSaveNote is the detached, fire-and-forget side effect: it
// summarizes the just-recorded QAPair and persists a Note unless the
// note-generation port signals ports.SkipNote. It is never joined by the
// caller; errors are logged only.
func (t *Task) generateAndSaveNote(ctx context.Context, pair domain.QAPair) {
	summary, err := t.notellm.Summarize(ctx, pair)
	if err != nil {
		t.log.LogError(ctx, err, "qa: note generation failed", slog.String("qa_pair_id", pair.ID.String()))
		return
	}
	if summary == ports.SkipNote {
		return
	}

	note := domain.Note{
		ID:                uuid.New(),
		SessionID:         pair.SessionID,
		GeneratedNoteText: summary,
	}
	if err := t.store.SaveNote(ctx, note); err != nil {
		t.log.LogError(ctx, err, "qa: failed to persist note", slog.String("qa_pair_id", pair.ID.String()))
	}
}

func (t *Task) sendAnsweringEnded(ctx context.Context) {
	if err := t.sink.SendText(protocol.Simple(protocol.ServerAnsweringEnded)); err != nil {
		t.log.LogError(ctx, err, "qa: failed to send answering_ended")
	}
}
