package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/providers/llm"
	"github.com/yoockh/visaprep/internal/utils"
)

func newCompletion(f *fixture, q RedFlagQueue) CompletionService {
	conv := NewConversationService(f.llm, f.d.Log)
	return NewCompletionService(f.d, conv, NewRedFlagService(f.d), q)
}

func msg(role, content string) ChatMessage { return ChatMessage{Role: role, Content: MessageContent(content)} }

func TestCompleteRequiresMessages(t *testing.T) {
	f := newFixture(t)
	_, err := newCompletion(f, nil).Complete(context.Background(), CompletionRequest{SessionID: "s1"})
	if utils.CodeOf(err) != utils.CodeInvalidArgument || !strings.Contains(err.Error(), "Messages array is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestCompleteSessionResolution(t *testing.T) {
	f := newFixture(t)
	svc := newCompletion(f, nil)
	ctx := context.Background()
	msgs := []ChatMessage{msg("user", "hello")}

	_, err := svc.Complete(ctx, CompletionRequest{Messages: msgs})
	if utils.CodeOf(err) != utils.CodeInvalidArgument || !strings.Contains(err.Error(), "No active interview session found") {
		t.Fatalf("no active session: %v", err)
	}

	_, err = svc.Complete(ctx, CompletionRequest{SessionID: "nope", Messages: msgs})
	if utils.CodeOf(err) != utils.CodeNotFound {
		t.Fatalf("unknown session: %v", err)
	}

	base := time.Now().UTC()
	f.addSession(t, "older", "u1", models.ModeSimulation, base)
	f.addSession(t, "newer", "u2", models.ModeSimulation, base.Add(time.Minute))
	res, err := svc.Complete(ctx, CompletionRequest{Messages: msgs})
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionID != "newer" {
		t.Fatalf("fallback picked %q", res.SessionID)
	}
}

func TestCompleteOpeningAppendsOfficerOnly(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "s1", "u1", models.ModeSimulation, time.Now())
	f.llm.ChatFunc = func(_ []llm.Message, m string) (string, error) {
		if m != openingRequest {
			t.Errorf("opening turn sent %q", m)
		}
		return "Good morning. May I have your passport, please?", nil
	}

	_, err := newCompletion(f, nil).Complete(context.Background(), CompletionRequest{
		SessionID: "s1",
		Messages:  []ChatMessage{msg("system", "you are an officer")},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := f.sessions.Get(context.Background(), "s1")
	if len(s.Transcript) != 1 || s.Transcript[0].Speaker != models.SpeakerOfficer {
		t.Fatalf("transcript = %+v", s.Transcript)
	}
}

func TestCompleteAppendsPairAndMirrorsTurnLog(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "s1", "u1", models.ModeSimulation, time.Now())
	f.llm.ChatFunc = func([]llm.Message, string) (string, error) { return "Who is paying for your studies?", nil }
	ctx := context.Background()

	res, err := newCompletion(f, nil).Complete(ctx, CompletionRequest{
		SessionID: "s1",
		Messages: []ChatMessage{
			msg("system", "ignored"),
			msg("assistant", "Why this university?"),
			msg("user", "Its robotics lab."),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Who is paying for your studies?" {
		t.Errorf("content = %q", res.Content)
	}

	s, _ := f.sessions.Get(ctx, "s1")
	if len(s.Transcript) != 2 ||
		s.Transcript[0].Speaker != models.SpeakerApplicant || s.Transcript[0].Text != "Its robotics lab." ||
		s.Transcript[1].Speaker != models.SpeakerOfficer || s.Transcript[1].Text != res.Content {
		t.Fatalf("transcript = %+v", s.Transcript)
	}
	rows, _ := f.turns.ListBySession(ctx, "s1", 0)
	if len(rows) != 2 {
		t.Fatalf("turn log rows = %d", len(rows))
	}
	if len(f.feed.Messages()) != 2 || f.feed.Messages()[0].Subject != events.FeedChannel("s1") {
		t.Errorf("feed = %+v", f.feed.Messages())
	}
}

func TestCompleteNoAppendWhenLastIsAssistant(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "s1", "u1", models.ModeSimulation, time.Now())
	_, err := newCompletion(f, nil).Complete(context.Background(), CompletionRequest{
		SessionID: "s1",
		Messages:  []ChatMessage{msg("user", "hi"), msg("assistant", "Passport please.")},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := f.sessions.Get(context.Background(), "s1")
	if len(s.Transcript) != 0 {
		t.Fatalf("transcript = %+v", s.Transcript)
	}
}

func TestCompletePracticeEnqueuesReview(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "p1", "u1", models.ModePractice, time.Now())
	f.addSession(t, "s1", "u1", models.ModeSimulation, time.Now())
	q := &fakeQueue{}
	svc := newCompletion(f, q)
	ctx := context.Background()

	msgs := []ChatMessage{msg("assistant", "Who pays?"), msg("user", "My uncle will pay")}
	if _, err := svc.Complete(ctx, CompletionRequest{SessionID: "p1", Messages: msgs}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx, CompletionRequest{SessionID: "s1", Messages: msgs}); err != nil {
		t.Fatal(err)
	}

	if len(q.jobs) != 1 {
		t.Fatalf("want one job for the practice session, got %d", len(q.jobs))
	}
	job := q.jobs[0]
	if job.SessionID != "p1" || job.Question != "Who pays?" || job.Answer != "My uncle will pay" || job.TurnID == "" || job.VisaType != "F-1" {
		t.Errorf("job = %+v", job)
	}
}

func TestCompleteOracleFailureSavesNothing(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "s1", "u1", models.ModeSimulation, time.Now())
	f.llm.ChatFunc = func([]llm.Message, string) (string, error) { return "", nil }

	_, err := newCompletion(f, nil).Complete(context.Background(), CompletionRequest{SessionID: "s1", Messages: []ChatMessage{msg("user", "hi")}})
	if utils.CodeOf(err) != utils.CodeUpstream {
		t.Fatalf("err = %v", err)
	}
	s, _ := f.sessions.Get(context.Background(), "s1")
	if len(s.Transcript) != 0 {
		t.Fatal("failed turn must not touch the transcript")
	}
}

func TestProxyDetectsRedFlagInPractice(t *testing.T) {
	f := newFixture(t)
	f.addSession(t, "p1", "u1", models.ModePractice, time.Now())
	f.llm.GenerateFunc = func(prompt string) (string, error) {
		if !strings.Contains(prompt, `"Why do you want to study in the US?"`) {
			t.Errorf("question missing from prompt")
		}
		return `{"hasRedFlag": true, "severity": "high", "type": "immigrant_intent", "explanation": "x", "betterAnswer": "y", "shouldPause": true}`, nil
	}
	svc := newCompletion(f, nil)
	ctx := context.Background()

	res, err := svc.Proxy(ctx, "u1", "p1", []ChatMessage{
		msg("model", "Why do you want to study in the US?"),
		msg("user", "Jobs are better there."),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RedFlag == nil || !res.RedFlag.HasRedFlag || *res.RedFlag.Type != "immigrant_intent" {
		t.Fatalf("redFlag = %+v", res.RedFlag)
	}

	rows, _ := f.turns.ListBySession(ctx, "p1", 0)
	if len(rows) != 2 || len(rows[0].Flags) != 1 || rows[0].Flags[0] != "immigrant_intent" {
		t.Fatalf("flag not attached to the applicant row: %+v", rows)
	}
	if !contains(f.bus.Subjects(), events.SubjectRedFlagDetected) {
		t.Error("red flag not published")
	}

	if _, err := svc.Proxy(ctx, "intruder", "p1", []ChatMessage{msg("user", "x")}); utils.CodeOf(err) != utils.CodeForbidden {
		t.Errorf("foreign proxy: %v", err)
	}
}

func TestMessageContentAcceptsParts(t *testing.T) {
	var m ChatMessage
	if err := json.Unmarshal([]byte(`{"role":"user","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Content != "a\nb" {
		t.Fatalf("content = %q", m.Content)
	}
	if err := json.Unmarshal([]byte(`{"role":"user","content":null}`), &m); err != nil || m.Content != "" {
		t.Fatalf("null content: %q %v", m.Content, err)
	}
}
