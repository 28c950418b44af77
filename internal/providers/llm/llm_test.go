package llm

import (
	"context"
	"errors"
	"testing"
)

func TestValidateHistory(t *testing.T) {
	ok := [][]Message{
		nil,
		{{Role: RoleUser, Text: "a"}, {Role: RoleModel, Text: "b"}},
		{{Role: RoleUser}, {Role: RoleModel}, {Role: RoleUser}, {Role: RoleModel}},
	}
	for i, h := range ok {
		if err := ValidateHistory(h); err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
		}
	}

	bad := [][]Message{
		{{Role: RoleModel}},
		{{Role: RoleUser}},
		{{Role: RoleUser}, {Role: RoleUser}},
		{{Role: RoleUser}, {Role: RoleModel}, {Role: RoleModel}, {Role: RoleModel}},
	}
	for i, h := range bad {
		if err := ValidateHistory(h); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
}

func TestMockRecordsCalls(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	h := []Message{{Role: RoleUser, Text: "sys"}, {Role: RoleModel, Text: "ack"}}
	out, err := m.Chat(ctx, h, "hello")
	if err != nil || out == "" {
		t.Fatalf("Chat = %q, %v", out, err)
	}
	if _, err := m.Chat(ctx, []Message{{Role: RoleModel}}, "x"); err == nil {
		t.Error("mock must enforce alternation")
	}
	if calls := m.ChatCalls(); len(calls) != 1 || calls[0].Message != "hello" {
		t.Errorf("ChatCalls = %+v", calls)
	}

	m.GenerateFunc = func(string) (string, error) { return "", errors.New("quota") }
	if _, err := m.Generate(ctx, "p"); err == nil {
		t.Error("expected scripted error")
	}
	if got := len(m.GenerateCalls()); got != 1 {
		t.Errorf("GenerateCalls = %d", got)
	}
}
