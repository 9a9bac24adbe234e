package ingestion

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	segjson "github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"github.com/jona04/colab-finance-go/internal/metrics"
)

const (
	minBackoff     = time.Second
	maxBackoff     = 30 * time.Second
	handshakeTO    = 30 * time.Second
	pingInterval   = 15 * time.Second
	pongWait       = 15 * time.Second
	inboundQueue   = 1000
	gracefulStopTO = 5 * time.Second
)

// Supervisor owns one reconnecting WebSocket connection per configured
// stream and feeds closed candles into a Dispatcher.
type Supervisor struct {
	baseURL    string
	dispatcher *Dispatcher
	log        zerolog.Logger
}

func NewSupervisor(baseURL string, dispatcher *Dispatcher, log zerolog.Logger) *Supervisor {
	return &Supervisor{baseURL: baseURL, dispatcher: dispatcher, log: log}
}

// Run supervises one goroutine per <symbol>@<interval> stream and
// blocks until ctx is cancelled or any stream returns a fatal error.
func (s *Supervisor) Run(ctx context.Context, streams []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, stream := range streams {
		stream := stream
		g.Go(func() error {
			return s.runStream(gctx, stream)
		})
	}
	return g.Wait()
}

// runStream reconnects with exponential backoff until ctx is done.
func (s *Supervisor) runStream(ctx context.Context, stream string) error {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := s.connectAndServe(ctx, stream)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.log.Warn().Err(err).Str("stream", stream).Dur("backoff", backoff).Msg("ingestion: stream disconnected, reconnecting")
		}

		metrics.IngestionReconnectsTotal.WithLabelValues(stream).Inc()

		jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff + jitter):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *Supervisor) connectAndServe(ctx context.Context, stream string) error {
	u := fmt.Sprintf("%s/ws/%s", s.baseURL, stream)
	if _, err := url.Parse(u); err != nil {
		return fmt.Errorf("ingestion: invalid stream url %s: %w", u, err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTO}
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("ingestion: dial %s: %w", stream, err)
	}
	defer conn.Close()

	conn.SetReadLimit(0) // unlimited message size per §4.J
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))

	msgs := make(chan []byte, inboundQueue)
	readErr := make(chan error, 1)

	go func() {
		defer close(msgs)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(gracefulStopTO))
			return nil

		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingInterval)); err != nil {
				return fmt.Errorf("ingestion: ping %s: %w", stream, err)
			}

		case err := <-readErr:
			return fmt.Errorf("ingestion: read %s: %w", stream, err)

		case data, ok := <-msgs:
			if !ok {
				continue
			}
			closed, err := s.handleMessage(ctx, stream, data)
			metrics.IngestionMessagesTotal.WithLabelValues(stream, boolLabel(closed)).Inc()
			if err != nil {
				s.log.Error().Err(err).Str("stream", stream).Msg("ingestion: dispatch failed")
			}
		}
	}
}

// handleMessage parses one kline envelope and dispatches it when
// closed (x==true); returns whether the bar was closed.
func (s *Supervisor) handleMessage(ctx context.Context, stream string, data []byte) (bool, error) {
	var env klineEnvelope
	if err := segjson.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("decode envelope: %w", err)
	}
	if !env.K.IsClosed {
		return false, nil
	}

	candle, err := env.K.toCandle()
	if err != nil {
		return true, fmt.Errorf("parse candle: %w", err)
	}

	if err := s.dispatcher.Dispatch(ctx, candle); err != nil {
		return true, err
	}
	return true, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
