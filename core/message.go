package core

import (
	"github.com/google/uuid"
)

// Conversation roles used in thread messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// BlockTypeText tags a content block carrying plain text. Remote services may
// emit additional block kinds (images, annotations); callers that only care
// about text should use Message.FirstText.
const BlockTypeText = "text"

// ContentBlock is one typed segment of a message. Type is a remote-defined
// tag; only text blocks carry a meaningful Text payload here.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is one entry in a remote conversation thread: a role plus ordered
// content blocks. After creation it should be treated as immutable.
type Message struct {
	ID     string         `json:"id,omitempty"`
	Role   string         `json:"role"`
	Blocks []ContentBlock `json:"blocks"`
}

// NewUserMessage builds a user-role message with a single text block.
func NewUserMessage(text string) Message {
	return Message{
		Role:   RoleUser,
		Blocks: []ContentBlock{{Type: BlockTypeText, Text: text}},
	}
}

// FirstText returns the payload of the first text-type content block and
// whether one exists.
func (m Message) FirstText() (string, bool) {
	for _, b := range m.Blocks {
		if b.Type == BlockTypeText {
			return b.Text, true
		}
	}
	return "", false
}

// NewID generates a new unique identifier for client-side correlation
// (execution ids, log stamping). Remote resource ids are always assigned by
// the remote service, never by this function.
func NewID() string { return uuid.NewString() }
