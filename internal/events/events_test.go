package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type failing struct{}

func (failing) Publish(context.Context, string, any) error { return errors.New("bus down") }

func TestEmitLogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	Emit(context.Background(), failing{}, log, SubjectSessionStarted, Event{Type: "x"})

	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("want one warning, got %+v", hook.Entries)
	}
	if hook.LastEntry().Data["subject"] != SubjectSessionStarted {
		t.Errorf("subject not logged: %+v", hook.LastEntry().Data)
	}

	Emit(context.Background(), nil, log, SubjectSessionStarted, nil)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	_ = r.Publish(ctx, SubjectSessionStarted, Event{Type: "started"})
	_ = r.Publish(ctx, FeedChannel("s1"), Event{Type: TypeTurn})

	got := r.Subjects()
	if len(got) != 2 || got[0] != SubjectSessionStarted || got[1] != "session:s1:events" {
		t.Fatalf("subjects = %v", got)
	}
}

func TestEventJSONShape(t *testing.T) {
	b, _ := json.Marshal(Event{Type: TypeRedFlag, SessionID: "s1", At: time.Unix(0, 0).UTC()})
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["type"] != "red_flag" || m["sessionId"] != "s1" {
		t.Fatalf("unexpected payload %s", b)
	}
	if _, ok := m["data"]; ok {
		t.Error("empty data should be omitted")
	}
}
