package llm

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role Role
	Text string
}

// Provider is the generative oracle. Both calls are unary and never retried.
type Provider interface {
	// Chat sends message as the next user turn after history. history must
	// start with a user turn, alternate strictly and end with a model turn.
	Chat(ctx context.Context, history []Message, message string) (string, error)
	// Generate runs a single prompt with no history.
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

var ErrEmptyResponse = errors.New("llm: empty response")

// ValidateHistory checks the alternation precondition of Chat.
func ValidateHistory(history []Message) error {
	for i, m := range history {
		want := RoleUser
		if i%2 == 1 {
			want = RoleModel
		}
		if m.Role != want {
			return fmt.Errorf("llm: history[%d] has role %q, want %q", i, m.Role, want)
		}
	}
	if len(history) > 0 && history[len(history)-1].Role != RoleModel {
		return errors.New("llm: history must end with a model turn")
	}
	return nil
}
