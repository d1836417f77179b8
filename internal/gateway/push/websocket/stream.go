package websocket

import (
	"context"
	"fmt"

	"golang.org/x/net/websocket"
	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

const defaultOrigin = "http://localhost/"

type streamLogger interface {
	Warn(msg string, fields ...logger.Field)
	Info(msg string, fields ...logger.Field)
}

// Stream одно WebSocket соединение с каналом событий посылок.
type Stream struct {
	log    streamLogger
	url    string
	origin string
}

func New(log streamLogger, url string) *Stream {
	return &Stream{log: log, url: url, origin: defaultOrigin}
}

// Run подключается и читает события до разрыва соединения или отмены ctx.
func (s *Stream) Run(ctx context.Context, handle func(entities.PushEvent)) error {
	cfg, err := websocket.NewConfig(s.url, s.origin)
	if err != nil {
		return entities.NewError(entities.KindInvalidInput, "websocket config", err)
	}

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return entities.NewError(entities.KindNetwork, "websocket dial", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	s.log.Info("push stream connected", logger.NewField("url", s.url))

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return entities.NewError(entities.KindNetwork, "websocket receive", fmt.Errorf("%s: %w", s.url, err))
		}

		event, err := entities.DecodePushEvent(raw)
		if err != nil {
			s.log.Warn("skipping malformed push message", logger.NewField("error", err))
			continue
		}
		handle(event)
	}
}
