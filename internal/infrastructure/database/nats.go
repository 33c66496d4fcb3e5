package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ConnectNATS dials the broker, retrying while it comes up. Once connected the client
// reconnects on its own.
func ConnectNATS(ctx context.Context, url, name string, log zerolog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}

	var nc *nats.Conn
	op := func() error {
		var err error
		nc, err = nats.Connect(url, opts...)
		return err
	}
	if err := retry(ctx, op, "nats", log); err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}
