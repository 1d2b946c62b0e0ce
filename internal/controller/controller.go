// Package controller implements the session state machine that owns one
// duplex connection: it applies client control messages to the session's
// Mode, spawns and respawns the reader task, and dispatches interruptions to
// the QA task.
package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oduggan21/reading-assistant/internal/chunker"
	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/ports"
	"github.com/oduggan21/reading-assistant/internal/protocol"
	"github.com/oduggan21/reading-assistant/internal/qa"
	"github.com/oduggan21/reading-assistant/internal/reader"
	"github.com/oduggan21/reading-assistant/internal/sessionstate"
	"github.com/oduggan21/reading-assistant/internal/transport"
)

// Adapters bundles the ports a Session needs. Passed by value at
// construction; every field must be non-nil.
type Adapters struct {
	Storage ports.Storage
	STT     ports.SpeechToText
	TTS     ports.TextToSpeech
	QA      ports.QuestionAnswering
	Notes   ports.NoteGeneration
	Title   ports.TitleGeneration
}

// Session drives one duplex connection end to end: Init handling, the
// control-message loop, and reader/QA task lifecycle. It is not safe for
// concurrent use from more than one goroutine reading frames — the
// transport layer owns exactly one reader goroutine per connection, which
// is the only caller of HandleText/HandleBinary.
type Session struct {
	sink     transport.Sink
	adapters Adapters
	log      *logger.Logger
	userID   string

	state     *sessionstate.State
	readerWG  sync.WaitGroup
	initOnce  sync.Once
	qaRunning bool
	qaMu      sync.Mutex
}

// closer is the optional capability a Sink implementation can provide to
// let the controller tear down the underlying connection (e.g. on an
// unauthorized Init). transport.Sink itself stays narrow; WSSink satisfies
// this incidentally.
type closer interface {
	Close() error
}

// New builds a Session bound to an outbound sink and the adapter set, for
// the connection authenticated as userID. The session does not begin
// reading until HandleText receives an init message.
func New(sink transport.Sink, adapters Adapters, log *logger.Logger, userID string) *Session {
	return &Session{sink: sink, adapters: adapters, log: log, userID: userID}
}

// HandleText applies one client->server text frame to the session.
func (s *Session) HandleText(ctx context.Context, raw []byte) {
	msg, err := protocol.ParseClientMessage(raw)
	if err != nil {
		s.log.LogError(ctx, err, "controller: malformed client message")
		_ = s.sink.SendText(protocol.Error("malformed message"))
		return
	}

	switch msg.Type {
	case protocol.ClientInit:
		s.handleInit(ctx, msg.SessionID)
	case protocol.ClientInterruptStarted:
		s.handleInterruptStarted()
	case protocol.ClientInterruptEnded:
		s.handleInterruptEnded(ctx)
	case protocol.ClientPauseReading:
		s.handlePauseReading()
	case protocol.ClientResumeReading:
		s.handleResumeReading(ctx)
	case protocol.ClientUpdateProgress:
		// Progress is authoritative server-side; client-reported indices are
		// advisory only and not applied.
	default:
		_ = s.sink.SendText(protocol.Error("unrecognized message type"))
	}
}

// HandleBinary applies one client->server binary frame: captured microphone
// audio, appended to the session's audio buffer while listening for a
// question.
func (s *Session) HandleBinary(frame []byte) {
	if s.state == nil {
		return
	}
	if s.state.CurrentMode() == sessionstate.InterruptedListening {
		s.state.AppendAudio(frame)
	}
}

func (s *Session) handleInit(ctx context.Context, sessionID uuid.UUID) {
	s.initOnce.Do(func() {
		session, err := s.adapters.Storage.GetSession(ctx, sessionID)
		if err != nil {
			s.log.LogError(ctx, err, "controller: failed to load session")
			_ = s.sink.SendText(protocol.Error("session not found"))
			return
		}
		if session.UserID.String() != s.userID {
			s.log.LogError(ctx, ports.ErrUnauthorized, "controller: session user does not match connection user")
			_ = s.sink.SendText(protocol.Error("unauthorized"))
			if c, ok := s.sink.(closer); ok {
				_ = c.Close()
			}
			return
		}

		document, err := s.adapters.Storage.GetDocument(ctx, session.DocumentID)
		if err != nil {
			s.log.LogError(ctx, err, "controller: failed to load document")
			_ = s.sink.SendText(protocol.Error("document not found"))
			return
		}

		s.state = &sessionstate.State{
			UserID:          session.UserID,
			DocumentID:      document.ID,
			SessionID:       session.ID,
			ChunkedDocument: chunker.Chunk(document.OriginalText),
			ProgressIndex:   session.ProgressIndex,
			Mode:            sessionstate.Reading,
		}

		if document.Title == nil {
			go s.generateTitleIfMissing(context.WithoutCancel(ctx), document)
		}

		if err := s.sink.SendText(protocol.SessionInitialized(session.ID)); err != nil {
			s.log.LogError(ctx, err, "controller: failed to send session_initialized")
			return
		}

		if welcome, err := s.adapters.TTS.Synthesize(ctx, protocol.WelcomeUtterance); err != nil {
			s.log.LogError(ctx, err, "controller: failed to synthesize welcome utterance")
		} else if err := s.sink.SendBinary(welcome); err != nil {
			s.log.LogError(ctx, err, "controller: failed to send welcome utterance")
			return
		}

		s.spawnReader(ctx)
	})
}

// generateTitleIfMissing is a detached, fire-and-forget side effect run once
// per document the first time it is opened without a title, symmetric with
// the QA task's note-generation side effect.
func (s *Session) generateTitleIfMissing(ctx context.Context, document domain.Document) {
	title, err := s.adapters.Title.GenerateTitle(ctx, document.OriginalText)
	if err != nil {
		s.log.LogError(ctx, err, "controller: title generation failed")
		return
	}
	if err := s.adapters.Storage.SetDocumentTitle(ctx, document.ID, title); err != nil {
		s.log.LogError(ctx, err, "controller: failed to persist generated title")
	}
}

func (s *Session) spawnReader(ctx context.Context) {
	token := s.state.InstallFreshCancelToken()
	s.state.SetMode(sessionstate.Reading)

	s.readerWG.Add(1)
	go func() {
		defer s.readerWG.Done()
		task := reader.New(s.state, s.sink, s.adapters.TTS, s.adapters.Storage, s.log)
		task.Run(ctx, token)
	}()
}

func (s *Session) handleInterruptStarted() {
	if s.state == nil {
		return
	}
	mode := s.state.CurrentMode()
	if mode != sessionstate.Reading {
		return
	}
	s.state.CurrentCancelToken().Cancel()
	s.state.SetMode(sessionstate.InterruptedListening)
}

func (s *Session) handleInterruptEnded(ctx context.Context) {
	if s.state == nil {
		return
	}
	if s.state.CurrentMode() != sessionstate.InterruptedListening {
		return
	}
	s.state.SetMode(sessionstate.ProcessingQuestion)

	s.qaMu.Lock()
	if s.qaRunning {
		s.qaMu.Unlock()
		return
	}
	s.qaRunning = true
	s.qaMu.Unlock()

	go func() {
		defer func() {
			s.qaMu.Lock()
			s.qaRunning = false
			s.qaMu.Unlock()
		}()

		s.state.SetMode(sessionstate.Answering)
		task := qa.New(s.state, s.sink, s.adapters.STT, s.adapters.TTS, s.adapters.QA, s.adapters.Notes, s.adapters.Storage, s.log)
		outcome := task.Run(ctx)

		switch outcome {
		case qa.OutcomeResume:
			s.spawnReader(ctx)
		case qa.OutcomeAnswered, qa.OutcomeEmpty:
			s.state.SetMode(sessionstate.InterruptedListening)
		}
	}()
}

func (s *Session) handlePauseReading() {
	if s.state == nil {
		return
	}
	if s.state.CurrentMode() != sessionstate.Reading {
		return
	}
	s.state.CurrentCancelToken().Cancel()
	s.state.SetMode(sessionstate.Paused)
	_ = s.sink.SendText(protocol.Simple(protocol.ServerReadingPaused))
}

func (s *Session) handleResumeReading(ctx context.Context) {
	if s.state == nil {
		return
	}
	if s.state.CurrentMode() != sessionstate.Paused {
		return
	}
	s.spawnReader(ctx)
}

// Wait blocks until the currently spawned reader task (if any) has
// returned. Used by the transport layer during connection teardown.
func (s *Session) Wait() {
	s.readerWG.Wait()
}
