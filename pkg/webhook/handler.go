// Package webhook receives build-finished notifications from the CI server,
// either pushed over HTTP or pulled from a websocket event stream.
package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/dispatch"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/observability"
)

const (
	// DeliveryHeader carries the delivery id of a notification
	DeliveryHeader = "X-Delivery-ID"
	// MaxPayloadSize bounds a single notification body
	MaxPayloadSize = 1 << 20

	sourceWebhook = "webhook"
	sourceStream  = "stream"
)

// Submitter queues a notification for processing.
type Submitter interface {
	Submit(b *build.Build) error
}

// Option configures a Handler or a Stream.
type Option func(*options)

type options struct {
	logger  observability.Logger
	metrics *observability.Metrics
	secret  string
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSecret makes the Handler require a valid SignatureHeader. The stream
// ignores it.
func WithSecret(secret string) Option {
	return func(o *options) { o.secret = secret }
}

func newOptions(opts []Option) options {
	o := options{logger: observability.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Handler accepts one notification per POST request.
type Handler struct {
	submitter Submitter
	options
}

// NewHandler creates a handler submitting to s.
func NewHandler(s Submitter, opts ...Option) *Handler {
	return &Handler{submitter: s, options: newOptions(opts)}
}

type response struct {
	DeliveryID string `json:"deliveryId"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.Header.Get(DeliveryHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(DeliveryHeader, id)
	log := h.logger.With(observability.String("delivery_id", id))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadSize))
	if err != nil {
		h.reject(w, log, id, http.StatusBadRequest, err)
		return
	}
	if h.secret != "" && !verifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.reject(w, log, id, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	b, err := decodeBuild(body)
	if err != nil {
		h.reject(w, log, id, http.StatusBadRequest, err)
		return
	}

	err = h.submitter.Submit(b)
	switch {
	case err == nil:
		log.Debug("accepted notification", observability.Int64("build_id", b.BuildID))
		h.metrics.RecordNotification(sourceWebhook, observability.OutcomeAccepted)
		writeJSON(w, http.StatusAccepted, response{DeliveryID: id, Status: "accepted"})
	case errors.Is(err, dispatch.ErrDuplicate):
		h.metrics.RecordNotification(sourceWebhook, observability.OutcomeDuplicate)
		writeJSON(w, http.StatusOK, response{DeliveryID: id, Status: "duplicate"})
	default:
		log.Warn("dropped notification", observability.Int64("build_id", b.BuildID), observability.Err(err))
		h.metrics.RecordNotification(sourceWebhook, observability.OutcomeDropped)
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, response{DeliveryID: id, Status: "dropped", Error: err.Error()})
	}
}

func (h *Handler) reject(w http.ResponseWriter, log observability.Logger, id string, status int, err error) {
	log.Warn("rejected notification", observability.Err(err))
	h.metrics.RecordNotification(sourceWebhook, observability.OutcomeRejected)
	writeJSON(w, status, response{DeliveryID: id, Status: "rejected", Error: err.Error()})
}

// decodeBuild parses and validates one notification.
func decodeBuild(data []byte) (*build.Build, error) {
	var b build.Build
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
