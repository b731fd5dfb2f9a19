package services

import (
	"context"

	"go.uber.org/zap"

	"stylesync-backend/internal/async"
	"stylesync-backend/internal/domain/stylist"
	apperrors "stylesync-backend/internal/errors"
)

// Assistant serves the stylist chat.
type Assistant struct {
	assistant *stylist.Assistant
	delay     async.Delayer
	logger    *zap.Logger
}

// NewAssistant wires the chat use case. delay stands in for the time the
// assistant takes to answer.
func NewAssistant(assistant *stylist.Assistant, delay async.Delayer, logger *zap.Logger) *Assistant {
	if assistant == nil {
		assistant = stylist.NewAssistant()
	}
	if delay == nil {
		delay = async.None
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{assistant: assistant, delay: delay, logger: logger}
}

// Greeting returns the message that opens a conversation.
func (a *Assistant) Greeting() stylist.ChatMessage {
	return a.assistant.Greet()
}

// Chat answers message after the reply delay.
func (a *Assistant) Chat(ctx context.Context, message string) (stylist.ChatMessage, error) {
	reply, err := a.assistant.Reply(message)
	if err != nil {
		return stylist.ChatMessage{}, err
	}
	if err := a.delay.Wait(ctx); err != nil {
		return stylist.ChatMessage{}, apperrors.Timeout("chat reply interrupted").WithCause(err).Build()
	}
	a.logger.Debug("Chat answered", zap.Int("message_length", len(message)))
	return reply, nil
}
