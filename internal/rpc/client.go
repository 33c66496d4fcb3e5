package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every call unless the client is configured otherwise
const DefaultTimeout = 60 * time.Second

const tracerName = "github.com/alirezazamanidev/project-microservice/internal/rpc"

// Caller is the calling side of a Client
type Caller interface {
	Call(ctx context.Context, subject string, payload, out any) error
}

// Client makes bounded request/reply calls to workers. It never retries: when a call
// times out the worker may or may not have completed it.
type Client struct {
	bus     Bus
	timeout time.Duration
	log     zerolog.Logger
	tracer  trace.Tracer
}

// NewClient creates a client. A non-positive timeout uses DefaultTimeout.
func NewClient(bus Bus, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		bus:     bus,
		timeout: timeout,
		log:     log.With().Str("component", "rpc_client").Logger(),
		tracer:  otel.Tracer(tracerName),
	}
}

// WithTimeout returns a copy of the client bounded by timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	cp := *c
	cp.timeout = timeout
	return &cp
}

// Call sends payload to subject and decodes the reply data into out (if non-nil).
// Every failure is returned as *Error.
func (c *Client) Call(ctx context.Context, subject string, payload, out any) error {
	correlationID := requestctx.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
		ctx = requestctx.WithCorrelationID(ctx, correlationID)
	}
	log := c.log.With().Str("correlation_id", correlationID).Str("subject", subject).Logger()

	ctx, span := c.tracer.Start(ctx, subject,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("messaging.system", "nats"),
			attribute.String("messaging.destination.name", subject),
			attribute.String("rpc.correlation_id", correlationID),
		),
	)
	defer span.End()

	data, err := encodeRequest(correlationID, payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode rpc request")
		return internalError(err)
	}

	header := nats.Header{}
	header.Set(HeaderCorrelationID, correlationID)
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(header))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	log.Info().Msg("rpc request sent")
	msg, err := c.bus.Request(ctx, &Msg{Subject: subject, Header: header, Data: data})
	elapsed := time.Since(start)
	if err != nil {
		rerr := classifyTransport(err)
		log.Warn().Err(err).Str("code", string(rerr.Code)).Dur("elapsed", elapsed).Msg("rpc call failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, string(rerr.Code))
		return rerr
	}

	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("malformed rpc reply")
		span.SetStatus(codes.Error, "malformed reply")
		return internalError(err)
	}

	if reply.Error != nil {
		rerr := Classify(reply.Error)
		log.Info().
			Str("code", string(rerr.Code)).
			Int("status", rerr.Status).
			Dur("elapsed", elapsed).
			Msg("rpc reply received")
		span.SetAttributes(attribute.String("rpc.error_code", string(rerr.Code)))
		if rerr.Status >= 500 {
			span.SetStatus(codes.Error, string(rerr.Code))
		}
		return rerr
	}

	log.Info().Dur("elapsed", elapsed).Msg("rpc reply received")
	if out == nil || len(reply.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(reply.Data, out); err != nil {
		log.Error().Err(err).Msg("failed to decode rpc reply data")
		return internalError(err)
	}
	return nil
}

func encodeRequest(correlationID string, payload any) ([]byte, error) {
	req := Request{CorrelationID: correlationID}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Payload = raw
	}
	return json.Marshal(req)
}

var _ Caller = (*Client)(nil)
