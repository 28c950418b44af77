package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/services"
)

const (
	DefaultStream = "redflag:stream"
	DefaultGroup  = "redflag-workers"
)

// RedFlagQueue enqueues review jobs on a Redis stream.
type RedFlagQueue struct {
	Redis  *redis.Client
	Stream string
}

func NewRedFlagQueue(rdb *redis.Client) *RedFlagQueue {
	return &RedFlagQueue{Redis: rdb, Stream: DefaultStream}
}

func (q *RedFlagQueue) Enqueue(ctx context.Context, job services.RedFlagJob) error {
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: q.Stream,
		Values: jobValues(job),
	}).Err()
}

// RedFlagWorkerPool consumes the stream and reviews each answer.
type RedFlagWorkerPool struct {
	Redis      *redis.Client
	RedFlags   services.RedFlagService
	NumWorkers int

	Logger logrus.FieldLogger

	Stream         string
	Group          string
	ConsumerPrefix string

	// JobTimeout bounds one oracle call plus bookkeeping.
	JobTimeout time.Duration
}

func (p *RedFlagWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.RedFlags == nil {
		return errors.New("RedFlagWorkerPool missing dependency: Redis/RedFlags must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.JobTimeout <= 0 {
		p.JobTimeout = 60 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{"stream": p.Stream, "workers": p.NumWorkers}).Info("red flag workers started")
	return nil
}

func (p *RedFlagWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).Warn("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *RedFlagWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	job, ok := jobFromValues(msg.Values)
	if !ok {
		p.Logger.WithField("redis_id", msg.ID).Warn("dropping malformed red flag job")
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"session_id": job.SessionID,
		"turn_id":    job.TurnID,
	})

	jctx, cancel := context.WithTimeout(ctx, p.JobTimeout)
	defer cancel()

	start := time.Now()
	res, err := p.RedFlags.Review(jctx, job)
	if err != nil {
		log.WithError(err).Error("red flag review failed")
		return
	}
	log.WithFields(logrus.Fields{
		"flagged":            res != nil && res.HasRedFlag,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Debug("red flag review done")
}

func jobValues(job services.RedFlagJob) map[string]any {
	return map[string]any{
		"session_id": job.SessionID,
		"user_id":    job.UserID,
		"turn_id":    job.TurnID,
		"question":   job.Question,
		"answer":     job.Answer,
		"visa_type":  job.VisaType,
		"country":    job.Country,
		"mode":       string(job.Mode),
		"ts_unix":    strconv.FormatInt(time.Now().UTC().Unix(), 10),
	}
}

func jobFromValues(values map[string]any) (services.RedFlagJob, bool) {
	getStr := func(k string) string {
		v, ok := values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	job := services.RedFlagJob{
		SessionID: getStr("session_id"),
		UserID:    getStr("user_id"),
		TurnID:    getStr("turn_id"),
		Question:  getStr("question"),
		Answer:    getStr("answer"),
		VisaType:  getStr("visa_type"),
		Country:   getStr("country"),
		Mode:      models.Mode(getStr("mode")),
	}
	if job.SessionID == "" || job.Answer == "" || !job.Mode.Valid() {
		return job, false
	}
	return job, true
}
