package model

// Sender identifies which side of the thread a message belongs to.
type Sender string

const (
	SenderMe   Sender = "me"
	SenderThem Sender = "them"
)

// ChatMessage is one transcript entry. Immutable once created; an ordered
// sequence of them forms a thread.
type ChatMessage struct {
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// ContextMode distinguishes a running chat from a one-off status reply.
type ContextMode string

const (
	ModeChat   ContextMode = "chat"
	ModeStatus ContextMode = "status"
)

// MessageContext is the thread plus optional media payload fed to one
// generation request.
type MessageContext struct {
	Thread               []ChatMessage `json:"thread"`
	AudioBase64          string        `json:"audioBase64,omitempty"`
	ImageBase64          string        `json:"imageBase64,omitempty"`
	VideoBase64          string        `json:"videoBase64,omitempty"`
	Type                 ContextMode   `json:"type"`
	InitialStatusContext string        `json:"initialStatusContext,omitempty"`
}

// LastFromThem returns the newest message if it came from the other side.
func (c MessageContext) LastFromThem() (ChatMessage, bool) {
	if n := len(c.Thread); n > 0 && c.Thread[n-1].Sender == SenderThem {
		return c.Thread[n-1], true
	}
	return ChatMessage{}, false
}
