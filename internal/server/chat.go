package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type chatRequest struct {
	Query string `json:"query"`
	// top_k arrives as a number or a string depending on the client.
	TopK any `json:"top_k"`
}

// handleChat answers one query per connection: read the request, stream
// the answer as text frames, then close. Deltas are written in emission
// order; a failed write aborts the in-flight pipeline invocation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	logger := s.logger.With(zap.String("session", session))

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("client read failed", zap.Error(err))
			}
			return
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			conn.WriteMessage(websocket.TextMessage, []byte("[Error] empty query"))
			continue
		}

		topK := coerceTopK(req.TopK, s.defaultTopK)
		logger.Info("chat query received", zap.String("query", query), zap.Int("top_k", topK))

		ctx, cancel := context.WithCancel(r.Context())
		err := s.answerer.Answer(ctx, query, topK, func(delta string) error {
			return conn.WriteMessage(websocket.TextMessage, []byte(delta))
		})
		cancel()

		if err != nil {
			logger.Error("answer failed", zap.Error(err))
			conn.WriteMessage(websocket.TextMessage, []byte("[Error] failed to generate answer"))
		}

		// One answer per connection; closure marks the end of the stream.
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return
	}
}

func coerceTopK(raw any, fallback int) int {
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
