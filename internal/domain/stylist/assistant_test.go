package stylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stylesync-backend/internal/errors"
)

func TestAssistant_Greet(t *testing.T) {
	msg := NewAssistant().Greet()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, Greeting, msg.Text)
}

func TestAssistant_Reply(t *testing.T) {
	var asked int
	a := NewAssistant(WithReplyPicker(PickFunc(func(n int) int {
		asked = n
		return 2
	})))

	msg, err := a.Reply("what should I wear to a wedding?")
	require.NoError(t, err)
	assert.Equal(t, len(Replies), asked)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, Replies[2], msg.Text)

	for _, blank := range []string{"", "   ", "\n\t"} {
		_, err := a.Reply(blank)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeMessageEmpty), "%q", blank)
	}
}

func TestAssistant_PickerOutOfRange(t *testing.T) {
	a := NewAssistant(
		WithReplies("only"),
		WithReplyPicker(PickFunc(func(int) int { return 7 })),
	)
	msg, err := a.Reply("hi")
	require.NoError(t, err)
	assert.Equal(t, "only", msg.Text)
}

func TestRandomReplies_StaysInRange(t *testing.T) {
	p := RandomReplies(42)
	for i := 0; i < 200; i++ {
		got := p.Pick(len(Replies))
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, len(Replies))
	}
}
