package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/dispatch"
	tracererrors "github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/observability"
)

// EventBuildFinished is the stream event carrying a finished build.
const EventBuildFinished = "buildFinished"

// DefaultReconnectDelay is the pause between stream connection attempts.
const DefaultReconnectDelay = 5 * time.Second

// Envelope is one message on the event stream.
type Envelope struct {
	Event string       `json:"event"`
	Build *build.Build `json:"build,omitempty"`
}

// Stream subscribes to the CI server's websocket event stream.
type Stream struct {
	url            string
	header         http.Header
	dialer         *websocket.Dialer
	submitter      Submitter
	reconnectDelay time.Duration
	options
}

// NewStream creates a subscriber for url. A non-positive reconnectDelay
// selects DefaultReconnectDelay.
func NewStream(url string, s Submitter, reconnectDelay time.Duration, opts ...Option) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	return &Stream{
		url:            url,
		header:         http.Header{},
		dialer:         websocket.DefaultDialer,
		submitter:      s,
		reconnectDelay: reconnectDelay,
		options:        newOptions(opts),
	}
}

// Run consumes the stream until ctx is done, reconnecting after transport
// failures. It returns ctx.Err() on cancellation, or the first error that is
// not worth retrying.
func (s *Stream) Run(ctx context.Context) error {
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !tracererrors.IsRetryable(err) {
			return err
		}
		s.logger.Warn("event stream disconnected",
			observability.String("url", s.url),
			observability.Err(err))

		timer := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// consume reads one connection until it fails.
func (s *Stream) consume(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return tracererrors.TransportError("failed to dial event stream", err).WithContext("url", s.url)
	}
	defer conn.Close()
	s.logger.Info("event stream connected", observability.String("url", s.url))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return tracererrors.TransportError("event stream read failed", err).WithContext("url", s.url)
		}
		s.handle(data)
	}
}

// handle submits one message. Malformed messages are dropped without
// closing the connection.
func (s *Stream) handle(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("malformed stream message", observability.Err(err))
		s.metrics.RecordNotification(sourceStream, observability.OutcomeRejected)
		return
	}
	if env.Event != EventBuildFinished {
		return
	}
	if env.Build == nil {
		s.metrics.RecordNotification(sourceStream, observability.OutcomeRejected)
		return
	}
	if err := env.Build.Validate(); err != nil {
		s.logger.Warn("rejected stream notification", observability.Err(err))
		s.metrics.RecordNotification(sourceStream, observability.OutcomeRejected)
		return
	}

	err := s.submitter.Submit(env.Build)
	switch {
	case err == nil:
		s.metrics.RecordNotification(sourceStream, observability.OutcomeAccepted)
	case errors.Is(err, dispatch.ErrDuplicate):
		s.metrics.RecordNotification(sourceStream, observability.OutcomeDuplicate)
	default:
		s.logger.Warn("dropped stream notification",
			observability.Int64("build_id", env.Build.BuildID),
			observability.Err(err))
		s.metrics.RecordNotification(sourceStream, observability.OutcomeDropped)
	}
}
