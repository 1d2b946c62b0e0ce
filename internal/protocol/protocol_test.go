package protocol

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseClientMessageInit(t *testing.T) {
	id := uuid.New()
	raw := []byte(`{"type":"init","session_id":"` + id.String() + `"}`)

	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != ClientInit {
		t.Errorf("Type = %q, want %q", msg.Type, ClientInit)
	}
	if msg.SessionID != id {
		t.Errorf("SessionID = %v, want %v", msg.SessionID, id)
	}
}

func TestParseClientMessageMissingType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"session_id":"` + uuid.New().String() + `"}`))
	if err == nil {
		t.Fatal("expected error for missing type discriminator")
	}
}

func TestParseClientMessageUpdateProgress(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"update_progress","sentence_index":7}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != ClientUpdateProgress || msg.SentenceIndex != 7 {
		t.Errorf("got %+v", msg)
	}
}

func TestEncodeServerMessageRoundTrip(t *testing.T) {
	id := uuid.New()
	b, err := Encode(SessionInitialized(id))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := ParseClientMessage(b) // ServerMessage and ClientMessage share the {type,...} shape
	if err != nil {
		t.Fatalf("unexpected error re-parsing encoded message: %v", err)
	}
	if string(msg.Type) != string(ServerSessionInitialized) {
		t.Errorf("Type = %q, want %q", msg.Type, ServerSessionInitialized)
	}
}
