package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/providers/llm"
	"github.com/yoockh/visaprep/internal/utils"
)

const (
	systemInstructionsFmt = "SYSTEM INSTRUCTIONS:\n%s\n\nYou are now in this role. Begin the interview."
	instructionsAck       = "Understood. I am ready to conduct the interview."
	openingRequest        = "Begin the interview with your opening question."
	continueRequest       = "Continue the interview with your next question."
)

// ConversationService turns a stored system prompt plus the running history
// into the officer's next line.
type ConversationService interface {
	ProcessTurn(ctx context.Context, systemPrompt string, history []models.Turn, mode models.Mode) (string, error)
}

type conversationService struct {
	llm llm.Provider
	log logrus.FieldLogger
}

func NewConversationService(provider llm.Provider, log logrus.FieldLogger) ConversationService {
	return &conversationService{llm: provider, log: log}
}

func (s *conversationService) ProcessTurn(ctx context.Context, systemPrompt string, history []models.Turn, mode models.Mode) (string, error) {
	const op = "ConversationService.ProcessTurn"

	msgs, message := BuildOracleConversation(systemPrompt, history)

	out, err := s.llm.Chat(ctx, msgs, message)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"op": op, "mode": mode}).Error("oracle chat failed")
		return "", utils.E(utils.CodeUpstream, op, "failed to process conversation turn", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", utils.E(utils.CodeUpstream, op, "failed to process conversation turn", llm.ErrEmptyResponse)
	}
	return out, nil
}

// BuildOracleConversation returns the alternating chat history (starting with
// the instruction pair) and the message to send next.
func BuildOracleConversation(systemPrompt string, history []models.Turn) ([]llm.Message, string) {
	msgs := []llm.Message{
		{Role: llm.RoleUser, Text: fmt.Sprintf(systemInstructionsFmt, systemPrompt)},
		{Role: llm.RoleModel, Text: instructionsAck},
	}

	turns := NormalizeTurns(history)
	if len(turns) == 0 {
		return msgs, openingRequest
	}
	// the officer opened the interview: its line stands in for the ack
	if turns[0].Role == models.SpeakerOfficer {
		msgs[1].Text = turns[0].Text
		turns = turns[1:]
	}

	message := continueRequest
	if n := len(turns); n > 0 && turns[n-1].Role == models.SpeakerApplicant {
		message = turns[n-1].Text
		turns = turns[:n-1]
	}
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: oracleRole(t.Role), Text: t.Text})
	}
	return msgs, message
}

// NormalizeTurns drops blank turns and merges consecutive turns of one speaker
// so the result alternates strictly.
func NormalizeTurns(history []models.Turn) []models.Turn {
	out := make([]models.Turn, 0, len(history))
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1].Text += "\n" + text
			continue
		}
		out = append(out, models.Turn{Role: t.Role, Text: text})
	}
	return out
}

func oracleRole(s models.Speaker) llm.Role {
	if s == models.SpeakerOfficer {
		return llm.RoleModel
	}
	return llm.RoleUser
}
