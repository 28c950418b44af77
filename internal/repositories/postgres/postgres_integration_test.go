//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/utils"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		t.Skip("POSTGRES_URI not set")
	}
	db, err := gorm.Open(gormpg.Open(uri), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&UserRow{}, &models.TurnLog{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestUserRepo(t *testing.T) {
	repo := NewUserRepo(openDB(t))
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Profile:      models.UserProfile{VisaType: "F-1", Country: "India", Age: 22},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	dup := *u
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, &dup); !errors.Is(err, utils.ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}

	got, err := repo.GetByEmail(ctx, email)
	if err != nil || got.ID != u.ID || got.Profile.Country != "India" {
		t.Fatalf("GetByEmail: %+v %v", got, err)
	}

	if err := repo.UpdateProfile(ctx, u.ID, models.UserProfile{VisaType: "H-1B", Country: "Mexico"}, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Get(ctx, u.ID)
	if got.Profile.VisaType != "H-1B" {
		t.Fatalf("profile not updated: %+v", got.Profile)
	}
	if _, err := repo.Get(ctx, uuid.NewString()); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestTurnLogRepo(t *testing.T) {
	repo := NewTurnLogRepo(openDB(t))
	ctx := context.Background()
	sid, uid := uuid.NewString(), uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	rows := make([]*models.TurnLog, 3)
	for i := range rows {
		rows[i] = &models.TurnLog{
			ID:        uuid.NewString(),
			UserID:    uid,
			SessionID: sid,
			Speaker:   models.SpeakerApplicant,
			Content:   "answer",
			Mode:      models.ModePractice,
			Flags:     pq.StringArray{},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
	}
	if err := repo.Insert(ctx, rows...); err != nil {
		t.Fatal(err)
	}
	if err := repo.AttachFlag(ctx, rows[1].ID, "financial", []byte(`{"severity":"medium"}`)); err != nil {
		t.Fatal(err)
	}
	if err := repo.AttachFlag(ctx, uuid.NewString(), "financial", nil); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("missing row: %v", err)
	}

	got, err := repo.ListBySession(ctx, sid, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != rows[1].ID || got[1].ID != rows[2].ID {
		t.Fatalf("want the latest two oldest first, got %+v", got)
	}
	if len(got[0].Flags) != 1 || got[0].Flags[0] != "financial" {
		t.Fatalf("flags = %v", got[0].Flags)
	}
}
