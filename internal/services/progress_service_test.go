package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/visaprep/internal/models"
)

func TestFoldProgressRecomputesAverage(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := FoldProgress(nil, "u1", "s1", 6, nil, t0)
	p = FoldProgress(p, "u1", "s2", 8, nil, t0)
	p = FoldProgress(p, "u1", "s3", 10, []models.AnalysisRedFlag{{Type: "financial"}, {Type: ""}, {Type: "financial"}}, t0.Add(time.Hour))

	if p.TotalSessions != 3 || len(p.SessionHistory) != 3 {
		t.Fatalf("total=%d history=%d", p.TotalSessions, len(p.SessionHistory))
	}
	if p.AverageScore != 8 {
		t.Errorf("average = %v, want 8", p.AverageScore)
	}
	if p.ReadinessScore != 80 {
		t.Errorf("readiness = %d, want 80", p.ReadinessScore)
	}
	w := p.WeaknessTracking["financial"]
	if w.Count != 2 || !w.LastSeen.Equal(t0.Add(time.Hour)) {
		t.Errorf("weakness = %+v", w)
	}
	if _, ok := p.WeaknessTracking[""]; ok {
		t.Error("flags without a type must be skipped")
	}
}

func TestFoldProgressFirstSession(t *testing.T) {
	p := FoldProgress(nil, "u1", "s1", 7.4, []models.AnalysisRedFlag{{Type: "weak_ties"}}, time.Now())
	if p.TotalSessions != 1 || p.AverageScore != 7.4 || p.ReadinessScore != 74 {
		t.Fatalf("p = %+v", p)
	}
	if p.WeaknessTracking["weak_ties"].Count != 1 {
		t.Error("first fold must track weaknesses too")
	}
}

func TestFoldProgressDoesNotMutateInput(t *testing.T) {
	cur := &models.Progress{UserID: "u1", TotalSessions: 1, WeaknessTracking: map[string]models.Weakness{"financial": {Count: 1}}}
	_ = FoldProgress(cur, "u1", "s2", 5, []models.AnalysisRedFlag{{Type: "financial"}}, time.Now())
	if cur.WeaknessTracking["financial"].Count != 1 || cur.TotalSessions != 1 {
		t.Fatal("input progress was mutated")
	}
}

func TestReadinessScoreCapped(t *testing.T) {
	if ReadinessScore(12) != 100 {
		t.Error("readiness must cap at 100")
	}
	if ReadinessScore(7.45) != 75 {
		t.Errorf("ReadinessScore(7.45) = %d", ReadinessScore(7.45))
	}
}

func TestTrend(t *testing.T) {
	cases := []struct {
		scores []float64
		want   string
	}{
		{nil, TrendStable},
		{[]float64{2, 9}, TrendStable},
		{[]float64{5, 6, 7}, TrendStable},
		{[]float64{4, 4, 4, 7, 7, 7}, TrendImproving},
		{[]float64{8, 8, 8, 6, 6, 6}, TrendDeclining},
		{[]float64{1, 6, 6, 6, 6, 6, 6}, TrendStable},
		{[]float64{5, 5.4, 5.4, 5.4}, TrendStable},
	}
	for _, c := range cases {
		if got := Trend(c.scores); got != c.want {
			t.Errorf("Trend(%v) = %s, want %s", c.scores, got, c.want)
		}
	}
}

func TestOverviewAndSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProgressService(f.d)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, score := range []float64{4, 4, 4, 7, 7, 7} {
		id := string(rune('a' + i))
		f.addSession(t, id, "u1", models.ModeSimulation, base.Add(time.Duration(i)*time.Hour))
		sc := score
		status := models.StatusCompleted
		done := base.Add(time.Duration(i)*time.Hour + 30*time.Minute)
		_ = f.sessions.Update(ctx, id, models.SessionUpdate{Status: &status, CompletedAt: &done, Analysis: &models.AnalysisResult{OverallScore: sc}})
	}
	f.addSession(t, "open", "u1", models.ModePractice, base.Add(10*time.Hour))
	_ = f.progress.Save(ctx, &models.Progress{UserID: "u1", ReadinessScore: 55, WeaknessTracking: map[string]models.Weakness{"vague_answer": {Count: 2}}})

	ov, err := svc.Overview(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if ov.TotalSessions != 7 || ov.CompletedSessions != 6 {
		t.Errorf("total=%d completed=%d", ov.TotalSessions, ov.CompletedSessions)
	}
	if ov.AverageScore != 5.5 || ov.Trend != TrendImproving {
		t.Errorf("average=%v trend=%s", ov.AverageScore, ov.Trend)
	}
	if ov.SessionHistory[0].SessionID != "a" || ov.SessionHistory[5].SessionID != "f" {
		t.Errorf("history should be oldest first: %+v", ov.SessionHistory)
	}
	if ov.ReadinessScore != 55 || ov.Weaknesses["vague_answer"].Count != 2 {
		t.Errorf("progress fields not carried: %+v", ov)
	}

	list, err := svc.Sessions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 7 || list[0].SessionID != "open" || list[0].Score != nil {
		t.Fatalf("sessions = %+v", list)
	}
	if list[1].Score == nil || *list[1].Score != 7 {
		t.Errorf("completed session score missing: %+v", list[1])
	}
}

func TestOverviewEmptyUser(t *testing.T) {
	f := newFixture(t)
	ov, err := NewProgressService(f.d).Overview(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if ov.TotalSessions != 0 || ov.Trend != TrendStable || ov.SessionHistory == nil || ov.Weaknesses == nil {
		t.Fatalf("ov = %+v", ov)
	}
}

func TestFoldSkipsRecordedSession(t *testing.T) {
	f := newFixture(t)
	svc := NewProgressService(f.d)
	ctx := context.Background()
	a := &models.AnalysisResult{OverallScore: 6}

	if _, err := svc.Fold(ctx, "u1", "s1", a); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Fold(ctx, "u1", "s1", &models.AnalysisResult{OverallScore: 9})
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalSessions != 1 || p.AverageScore != 6 {
		t.Fatalf("second fold changed progress: %+v", p)
	}
}

func TestFoldConcurrentSessionsOfOneUser(t *testing.T) {
	f := newFixture(t)
	svc := NewProgressService(f.d)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Fold(ctx, "u1", fmt.Sprintf("s%d", i), &models.AnalysisResult{OverallScore: 5})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	p, _ := f.progress.Get(ctx, "u1")
	if p.TotalSessions != n || len(p.SessionHistory) != n {
		t.Fatalf("lost folds: total=%d history=%d", p.TotalSessions, len(p.SessionHistory))
	}
}
