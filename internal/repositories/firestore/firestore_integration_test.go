//go:build integration

package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
)

// Runs against the emulator only; each test gets its own project.
func testClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	fs, err := firestore.NewClient(context.Background(), "visaprep-it-"+strings.ToLower(uuid.NewString()[:8]))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func TestSessionRepoAppendOrder(t *testing.T) {
	repo := NewSessionRepo(testClient(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := repo.Create(ctx, &models.Session{SessionID: "s1", UserID: "u1", Mode: models.ModePractice, Status: models.StatusInProgress, StartedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendTranscript(ctx, "s1", models.TranscriptEntry{Speaker: models.SpeakerOfficer, Text: "opening", Timestamp: now}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.AppendTranscript(ctx, "s1",
				models.TranscriptEntry{Speaker: models.SpeakerApplicant, Text: fmt.Sprintf("a-%d", i), Timestamp: now},
				models.TranscriptEntry{Speaker: models.SpeakerOfficer, Text: fmt.Sprintf("q-%d", i), Timestamp: now},
			); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	s, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Transcript) != 11 || s.Transcript[0].Text != "opening" {
		t.Fatalf("transcript: %+v", s.Transcript)
	}
	for i := 1; i < len(s.Transcript); i += 2 {
		a, q := s.Transcript[i], s.Transcript[i+1]
		if a.Speaker != models.SpeakerApplicant || q.Speaker != models.SpeakerOfficer || a.Text[2:] != q.Text[2:] {
			t.Fatalf("pair split at %d: %q %q", i, a.Text, q.Text)
		}
	}

	if err := repo.AppendTranscript(ctx, "missing", models.TranscriptEntry{Text: "x"}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("append to missing session: %v", err)
	}
}

func TestSessionRepoListByStatusNewestFirst(t *testing.T) {
	repo := NewSessionRepo(testClient(t))
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	starts := []struct {
		id     string
		offset time.Duration
	}{{"old", 0}, {"new", 2 * time.Minute}, {"mid", time.Minute}}
	for _, s := range starts {
		if err := repo.Create(ctx, &models.Session{
			SessionID: s.id, UserID: "u-" + s.id, Mode: models.ModeSimulation,
			Status: models.StatusInProgress, StartedAt: base.Add(s.offset),
		}); err != nil {
			t.Fatal(err)
		}
	}
	done := models.StatusCompleted
	if err := repo.Update(ctx, "mid", models.SessionUpdate{Status: &done}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListByStatus(ctx, models.StatusInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].SessionID != "new" || got[1].SessionID != "old" {
		t.Fatalf("in_progress order: %+v", got)
	}
}
