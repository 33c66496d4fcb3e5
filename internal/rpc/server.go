package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc serves one subject. The returned value becomes the reply data.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Bind adapts a typed handler, decoding the payload into T first
func Bind[T any](fn func(ctx context.Context, req T) (any, error)) HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, fmt.Errorf("%w: malformed payload", domain.ErrValidation)
			}
		}
		return fn(ctx, req)
	}
}

// Server dispatches bus requests to registered subject handlers
type Server struct {
	bus    Bus
	queue  string
	log    zerolog.Logger
	tracer trace.Tracer

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	subs     []Subscription
	closing  bool
	inflight sync.WaitGroup
}

// NewServer creates a server that joins queue on every subject it serves
func NewServer(bus Bus, queue string, log zerolog.Logger) *Server {
	return &Server{
		bus:      bus,
		queue:    queue,
		log:      log.With().Str("component", "rpc_server").Logger(),
		tracer:   otel.Tracer(tracerName),
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers h for subject. It must be called before Start.
func (s *Server) Handle(subject string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[subject] = h
}

// Subjects returns the registered subjects
func (s *Server) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.handlers))
	for subject := range s.handlers {
		out = append(out, subject)
	}
	return out
}

// Start subscribes every registered subject
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for subject, h := range s.handlers {
		subject, h := subject, h
		sub, err := s.bus.QueueSubscribe(subject, s.queue, func(ctx context.Context, msg *Msg) []byte {
			if !s.enter() {
				return encodeReply(Reply{Error: errorBody(domain.ErrUpstreamUnavailable)})
			}
			defer s.inflight.Done()
			return s.dispatch(ctx, subject, h, msg)
		})
		if err != nil {
			s.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
		s.log.Info().Str("subject", subject).Str("queue", s.queue).Msg("subscribed")
	}
	return nil
}

// Stop removes every subscription at once. Requests already being handled keep running.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked()
}

// Shutdown drains every subscription and waits until the requests it accepted have been
// handled. It returns ctx.Err() when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			s.log.Warn().Err(err).Msg("failed to drain subscription")
		}
	}
	drained := func() bool {
		for _, sub := range subs {
			if sub.IsValid() {
				return false
			}
		}
		return true
	}
	if err := waitUntil(ctx, drained); err != nil {
		return err
	}

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	return waitGroup(ctx, &s.inflight)
}

// enter counts a request in, unless Shutdown is already waiting
func (s *Server) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.inflight.Add(1)
	return true
}

func (s *Server) unsubscribeLocked() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn().Err(err).Msg("failed to unsubscribe")
		}
	}
	s.subs = nil
}

func (s *Server) dispatch(ctx context.Context, subject string, h HandlerFunc, msg *Msg) []byte {
	start := time.Now()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Header))
	}

	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("malformed rpc request")
		return encodeReply(Reply{Error: errorBody(fmt.Errorf("%w: malformed envelope", domain.ErrValidation))})
	}
	if req.CorrelationID == "" && msg.Header != nil {
		req.CorrelationID = msg.Header.Get(HeaderCorrelationID)
	}
	ctx = requestctx.WithCorrelationID(ctx, req.CorrelationID)
	log := s.log.With().Str("correlation_id", req.CorrelationID).Str("subject", subject).Logger()
	ctx = log.WithContext(ctx)

	ctx, span := s.tracer.Start(ctx, subject,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", subject),
			attribute.String("rpc.correlation_id", req.CorrelationID),
		),
	)
	defer span.End()

	data, err := s.invoke(ctx, h, req.Payload)
	reply := Reply{CorrelationID: req.CorrelationID}
	if err != nil {
		body := errorBody(err)
		event := log.Info()
		if body.Code == string(domain.CodeInternal) {
			event = log.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, body.Code)
		}
		event.Err(err).Str("code", body.Code).Dur("elapsed", time.Since(start)).Msg("rpc handler failed")
		reply.Error = body
		return encodeReply(reply)
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode rpc reply data")
			reply.Error = errorBody(err)
			return encodeReply(reply)
		}
		reply.Data = raw
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("rpc handled")
	return encodeReply(reply)
}

// invoke runs h, turning a panic into an internal error
func (s *Server) invoke(ctx context.Context, h HandlerFunc, payload json.RawMessage) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

func encodeReply(reply Reply) []byte {
	if reply.Error != nil && reply.Error.Timestamp.IsZero() {
		reply.Error.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(reply)
	if err != nil {
		body := errorBody(errors.New("encode reply"))
		body.Timestamp = time.Now().UTC()
		data, _ = json.Marshal(Reply{CorrelationID: reply.CorrelationID, Error: body})
	}
	return data
}
