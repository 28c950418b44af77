package llm

import (
	"context"
	"strings"
	"sync"
)

type ChatCall struct {
	History []Message
	Message string
}

// Mock is a scripted oracle for tests and ORACLE=mock local runs. Unset
// funcs fall back to canned interview behaviour.
type Mock struct {
	ChatFunc     func(history []Message, message string) (string, error)
	GenerateFunc func(prompt string) (string, error)

	mu            sync.Mutex
	chatCalls     []ChatCall
	generateCalls []string
}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Chat(_ context.Context, history []Message, message string) (string, error) {
	if err := ValidateHistory(history); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.chatCalls = append(m.chatCalls, ChatCall{History: append([]Message(nil), history...), Message: message})
	n := len(m.chatCalls)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(history, message)
	}
	return cannedQuestions[(n-1)%len(cannedQuestions)], nil
}

func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.generateCalls = append(m.generateCalls, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(prompt)
	}
	if strings.Contains(prompt, `"hasRedFlag"`) {
		return cannedNoRedFlag, nil
	}
	return cannedAnalysis, nil
}

func (m *Mock) Close() error { return nil }

func (m *Mock) ChatCalls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatCall(nil), m.chatCalls...)
}

func (m *Mock) GenerateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.generateCalls...)
}

var cannedQuestions = []string{
	"Good morning. May I have your passport, please? Then state your full name and the type of visa you are applying for.",
	"Why did you choose this university?",
	"Who is paying for your studies?",
	"What will you do after you graduate?",
	"Do you have any family in the United States?",
}

const cannedNoRedFlag = `{"hasRedFlag": false, "severity": null, "type": null, "explanation": null, "betterAnswer": null, "shouldPause": false}`

const cannedAnalysis = `{
  "overallScore": 7,
  "approvalLikelihood": 70,
  "likelyOutcome": "approved",
  "keyFactor": "Clear study plan with credible return intent",
  "redFlags": [],
  "strengths": ["Specific program choice", "Clear funding source"],
  "scores": {"clarity": 7, "confidence": 6, "specificity": 7, "returnIntent": 7},
  "recommendations": ["Name concrete employers back home"],
  "weakAnswersAnalysis": [],
  "nextFocus": "Return intent",
  "readyForRealInterview": false,
  "whatsMissing": "More concrete post-graduation plans",
  "recommendedSessions": 2
}`
