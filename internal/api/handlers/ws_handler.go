package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/services"
	"github.com/yoockh/visaprep/internal/utils"
)

// WSHandler forwards a session's live feed (turns, red flags, completion,
// analysis) to a browser over a websocket.
type WSHandler struct {
	interviews services.InterviewService
	redis      *redis.Client
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, rdb *redis.Client, log logrus.FieldLogger, allowOrigin func(*http.Request) bool) *WSHandler {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &WSHandler{
		interviews: interviews,
		redis:      rdb,
		log:        log,
		upgrader:   websocket.Upgrader{CheckOrigin: allowOrigin},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
}

func (h *WSHandler) SessionFeed(c *gin.Context) {
	const op = "WSHandler.SessionFeed"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if h.redis == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "live feed is not configured", nil))
		return
	}

	sessionID := c.Param("session_id")
	if _, err := h.interviews.Get(c.Request.Context(), sessionID, userID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, events.FeedChannel(sessionID))
	defer pubsub.Close()

	log := h.log.WithFields(logrus.Fields{"op": op, "session_id": sessionID, "user_id": userID})
	log.Debug("feed subscribed")

	// reader: only drains control frames and notices the close
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	msgs := pubsub.Channel()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wc.ping(); err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(m.Payload)); err != nil {
				log.WithError(err).Debug("feed write failed")
				return
			}
		}
	}
}
