package memory

import (
	"context"
	"sync"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
)

type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *SessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.SessionID]; ok {
		return utils.ErrConflict
	}
	r.sessions[s.SessionID] = cloneSession(s)
	return nil
}

func (r *SessionRepo) Get(_ context.Context, sessionID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *SessionRepo) Update(_ context.Context, sessionID string, u models.SessionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		s.CompletedAt = &t
	}
	if u.Analysis != nil {
		s.Analysis = cloneAnalysis(u.Analysis)
	}
	return nil
}

func (r *SessionRepo) AppendTranscript(_ context.Context, sessionID string, entries ...models.TranscriptEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Transcript = append(s.Transcript, entries...)
	return nil
}

func (r *SessionRepo) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	return r.list(func(s *models.Session) bool { return s.UserID == userID }), nil
}

func (r *SessionRepo) ListByStatus(_ context.Context, status models.SessionStatus) ([]models.Session, error) {
	return r.list(func(s *models.Session) bool { return s.Status == status }), nil
}

func (r *SessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return utils.ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *SessionRepo) list(keep func(*models.Session) bool) []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Session, 0)
	for _, s := range r.sessions {
		if keep(s) {
			out = append(out, *cloneSession(s))
		}
	}
	repositories.SortNewestFirst(out)
	return out
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	c.Transcript = append([]models.TranscriptEntry(nil), s.Transcript...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.Analysis != nil {
		c.Analysis = cloneAnalysis(s.Analysis)
	}
	return &c
}

func cloneAnalysis(a *models.AnalysisResult) *models.AnalysisResult {
	c := *a
	c.RedFlags = cloneSlice(a.RedFlags)
	c.Strengths = cloneSlice(a.Strengths)
	c.Recommendations = cloneSlice(a.Recommendations)
	c.WeakAnswersAnalysis = cloneSlice(a.WeakAnswersAnalysis)
	if a.WhatsMissing != nil {
		m := *a.WhatsMissing
		c.WhatsMissing = &m
	}
	return &c
}

// cloneSlice copies xs, keeping nil and empty apart so JSON output matches.
func cloneSlice[T any](xs []T) []T {
	if xs == nil {
		return nil
	}
	return append(make([]T, 0, len(xs)), xs...)
}
