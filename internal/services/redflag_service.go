package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/prompts"
	"github.com/yoockh/visaprep/internal/utils"
)

// RedFlagJob is one applicant answer awaiting review.
type RedFlagJob struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	TurnID    string      `json:"turn_id"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	VisaType  string      `json:"visa_type"`
	Country   string      `json:"country"`
	Mode      models.Mode `json:"mode"`
}

// RedFlagQueue hands jobs to the background workers.
type RedFlagQueue interface {
	Enqueue(ctx context.Context, job RedFlagJob) error
}

type RedFlagService interface {
	// Detect returns nil outside practice mode without calling the oracle.
	Detect(ctx context.Context, mode models.Mode, answer, question, visaType, country string) (*models.RedFlagResult, error)
	// Review detects, then attaches a positive result to the turn log and
	// announces it.
	Review(ctx context.Context, job RedFlagJob) (*models.RedFlagResult, error)
}

type redFlagService struct {
	d Deps
}

func NewRedFlagService(d Deps) RedFlagService {
	return &redFlagService{d: d.withDefaults()}
}

func (s *redFlagService) Detect(ctx context.Context, mode models.Mode, answer, question, visaType, country string) (*models.RedFlagResult, error) {
	const op = "RedFlagService.Detect"

	if mode != models.ModePractice {
		return nil, nil
	}

	text, err := s.d.LLM.Generate(ctx, prompts.RedFlagPrompt(visaType, country, question, answer))
	if err != nil {
		return nil, utils.E(utils.CodeUpstream, op, "red flag detection failed", err)
	}
	raw, err := ExtractJSONObject(text)
	if err != nil {
		s.d.Log.WithError(err).WithFields(logrus.Fields{"op": op, "raw": logger.Truncate(text, 200)}).Error("red flag response is not JSON")
		return nil, utils.E(utils.CodeInternal, op, "failed to parse red flag response", err)
	}
	res := NormalizeRedFlag(raw)
	return &res, nil
}

func (s *redFlagService) Review(ctx context.Context, job RedFlagJob) (*models.RedFlagResult, error) {
	const op = "RedFlagService.Review"

	res, err := s.Detect(ctx, job.Mode, job.Answer, job.Question, job.VisaType, job.Country)
	if err != nil || res == nil || !res.HasRedFlag {
		return res, err
	}

	flagType := "unspecified"
	if res.Type != nil {
		flagType = *res.Type
	}
	log := s.d.Log.WithFields(logrus.Fields{"op": op, "session_id": job.SessionID, "turn_id": job.TurnID, "flag": flagType})

	if job.TurnID != "" && s.d.Turns != nil {
		meta, _ := json.Marshal(res)
		if err := s.d.Turns.AttachFlag(ctx, job.TurnID, flagType, meta); err != nil {
			log.WithError(err).Warn("attach flag failed")
		}
	}

	evt := events.Event{
		Type:      events.TypeRedFlag,
		SessionID: job.SessionID,
		UserID:    job.UserID,
		At:        timeNow(),
		Data: map[string]any{
			"turnId":   job.TurnID,
			"question": job.Question,
			"answer":   job.Answer,
			"redFlag":  res,
		},
	}
	events.Emit(ctx, s.d.Feed, s.d.Log, events.FeedChannel(job.SessionID), evt)
	events.Emit(ctx, s.d.Bus, s.d.Log, events.SubjectRedFlagDetected, evt)
	log.Info("red flag detected")
	return res, nil
}
