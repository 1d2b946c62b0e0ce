// Package protocol defines the duplex wire grammar between browser client and
// session core: tagged JSON text messages in both directions, plus opaque
// binary audio frames that this package never inspects.
package protocol

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ClientType enumerates the "type" discriminator client->server text
// messages carry.
type ClientType string

const (
	ClientInit             ClientType = "init"
	ClientInterruptStarted ClientType = "interrupt_started"
	ClientInterruptEnded   ClientType = "interrupt_ended"
	ClientPauseReading     ClientType = "pause_reading"
	ClientResumeReading    ClientType = "resume_reading"
	ClientUpdateProgress   ClientType = "update_progress"
)

// ClientMessage is the parsed form of any client->server text frame. Only
// the fields relevant to Type are populated.
type ClientMessage struct {
	Type          ClientType `json:"type"`
	SessionID     uuid.UUID  `json:"session_id,omitempty"`
	SentenceIndex int        `json:"sentence_index,omitempty"`
}

// ParseClientMessage decodes one text frame's JSON body.
func ParseClientMessage(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := sonic.Unmarshal(raw, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("parse client message: %w", err)
	}
	if msg.Type == "" {
		return ClientMessage{}, fmt.Errorf("parse client message: missing type discriminator")
	}
	return msg, nil
}

// ServerType enumerates the "type" discriminator server->client text
// messages carry.
type ServerType string

const (
	ServerSessionInitialized ServerType = "session_initialized"
	ServerError              ServerType = "error"
	ServerReadingStarted     ServerType = "reading_started"
	ServerReadingPaused      ServerType = "reading_paused"
	ServerReadingEnded       ServerType = "reading_ended"
	ServerAnsweringStarted   ServerType = "answering_started"
	ServerAnsweringEnded     ServerType = "answering_ended"
)

// ServerMessage is the form of any server->client text frame.
type ServerMessage struct {
	Type      ServerType `json:"type"`
	SessionID uuid.UUID  `json:"session_id,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Encode marshals a ServerMessage to its wire JSON form.
func Encode(msg ServerMessage) ([]byte, error) {
	b, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode server message %s: %w", msg.Type, err)
	}
	return b, nil
}

// SessionInitialized builds the session_initialized confirmation frame.
func SessionInitialized(sessionID uuid.UUID) ServerMessage {
	return ServerMessage{Type: ServerSessionInitialized, SessionID: sessionID}
}

// Error builds an error frame carrying a human-readable message.
func Error(message string) ServerMessage {
	return ServerMessage{Type: ServerError, Message: message}
}

// Simple builds a bare text frame with no payload beyond its type — used for
// reading_started, reading_paused, reading_ended, answering_started,
// answering_ended.
func Simple(t ServerType) ServerMessage {
	return ServerMessage{Type: t}
}

// Fixed strings the core emits verbatim.
const (
	WelcomeUtterance = "Hi there! I am looking forward to discussing the information you have provided today! " +
		"If at any point you have a question, please feel free to interrupt me, or if you need to pause our " +
		"session, just click pause! I will now begin reading the information!"

	UnrelatedApology = "I'm sorry, I didn't understand your question given the context of what we've read so far. " +
		"Could you please try asking again?"
)
