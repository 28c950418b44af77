package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/providers/llm"
	"github.com/yoockh/visaprep/internal/repositories/memory"
)

type fixture struct {
	d    Deps
	llm  *llm.Mock
	bus  *events.Recorder
	feed *events.Recorder

	sessions *memory.SessionRepo
	progress *memory.ProgressRepo
	users    *memory.UserRepo
	turns    *memory.TurnLogRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		llm:      llm.NewMock(),
		bus:      &events.Recorder{},
		feed:     &events.Recorder{},
		sessions: memory.NewSessionRepo(),
		progress: memory.NewProgressRepo(),
		users:    memory.NewUserRepo(),
		turns:    memory.NewTurnLogRepo(),
	}
	f.d = Deps{
		Sessions: f.sessions,
		Progress: f.progress,
		Users:    f.users,
		Turns:    f.turns,
		Bus:      f.bus,
		Feed:     f.feed,
		LLM:      f.llm,
		Log:      logger.Discard(),
	}
	return f
}

func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	err := f.users.Create(context.Background(), &models.User{
		ID:    id,
		Email: id + "@example.com",
		Profile: models.UserProfile{
			VisaType:   "F-1",
			Country:    "India",
			Age:        22,
			Field:      "Computer Science",
			University: "Stanford University",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) addSession(t *testing.T, id, userID string, mode models.Mode, started time.Time) {
	t.Helper()
	err := f.sessions.Create(context.Background(), &models.Session{
		SessionID:    id,
		UserID:       userID,
		Mode:         mode,
		Status:       models.StatusInProgress,
		VisaType:     "F-1",
		Country:      "India",
		SystemPrompt: "PROMPT",
		StartedAt:    started,
	})
	if err != nil {
		t.Fatal(err)
	}
}

// fakeQueue collects jobs instead of writing to Redis.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []RedFlagJob
}

func (q *fakeQueue) Enqueue(_ context.Context, job RedFlagJob) error {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return nil
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := clock
	clock = func() time.Time { return at }
	t.Cleanup(func() { clock = prev })
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
