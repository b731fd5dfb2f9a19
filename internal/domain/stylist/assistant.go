package stylist

import (
	"strings"
	"time"

	apperrors "stylesync-backend/internal/errors"
)

// Greeting opens every conversation with the assistant.
const Greeting = "Hi! I'm your AI fashion assistant. How can I help you find the perfect outfit today?"

// Replies are the assistant's canned answers.
var Replies = []string{
	"That sounds great! I recommend checking out our casual collection for a relaxed look.",
	"Based on your style preferences, I think you'd love our latest arrivals.",
	"For that occasion, I suggest pairing a blazer with tailored pants. Would you like me to show you some options?",
	"I can help you create a complete outfit! What colors do you prefer?",
	"Great choice! Let me find some matching accessories for you.",
}

// Role says who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ReplyPicker chooses an index in [0, n).
type ReplyPicker interface {
	Pick(n int) int
}

// PickFunc adapts a function to ReplyPicker.
type PickFunc func(n int) int

// Pick implements ReplyPicker.
func (f PickFunc) Pick(n int) int { return f(n) }

// RandomReplies picks uniformly, seeded like RandomScores.
func RandomReplies(seed int64) ReplyPicker {
	scores := RandomScores(seed)
	return PickFunc(func(n int) int { return scores.Score(0, n-1) })
}

// Assistant answers shopper messages. It does not read them beyond checking
// that they are not blank.
type Assistant struct {
	picker  ReplyPicker
	replies []string
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

// WithReplyPicker replaces the random picker.
func WithReplyPicker(p ReplyPicker) AssistantOption {
	return func(a *Assistant) { a.picker = p }
}

// WithReplies replaces the canned answers. An empty list is ignored.
func WithReplies(replies ...string) AssistantOption {
	return func(a *Assistant) {
		if len(replies) > 0 {
			a.replies = replies
		}
	}
}

// NewAssistant returns an assistant that picks from Replies at random.
func NewAssistant(opts ...AssistantOption) *Assistant {
	a := &Assistant{replies: Replies}
	for _, opt := range opts {
		opt(a)
	}
	if a.picker == nil {
		a.picker = RandomReplies(time.Now().UnixNano())
	}
	return a
}

// Greet returns the opening message.
func (a *Assistant) Greet() ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: Greeting}
}

// Reply answers message. Blank messages are rejected.
func (a *Assistant) Reply(message string) (ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return ChatMessage{}, apperrors.Validation(apperrors.CodeMessageEmpty, "message is empty").Build()
	}
	i := a.picker.Pick(len(a.replies))
	if i < 0 || i >= len(a.replies) {
		i = 0
	}
	return ChatMessage{Role: RoleAssistant, Text: a.replies[i]}, nil
}
