package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Msg is a request or reply carried by a Bus
type Msg struct {
	Subject string
	Header  nats.Header
	Data    []byte
}

// MsgHandler handles one request and returns the reply data
type MsgHandler func(ctx context.Context, msg *Msg) []byte

// Subscription is an active handler registration. After Drain, IsValid turns false once the
// requests already delivered to it have been handed to its handler.
type Subscription interface {
	Unsubscribe() error
	Drain() error
	IsValid() bool
}

// Bus is a request/reply transport that delivers each request to exactly one subscriber
// of the subject and returns at most one reply.
type Bus interface {
	Request(ctx context.Context, msg *Msg) (*Msg, error)
	QueueSubscribe(subject, queue string, handler MsgHandler) (Subscription, error)
}

// NATSBus implements Bus over a NATS connection
type NATSBus struct {
	conn *nats.Conn

	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// NewNATSBus creates a bus on an established connection
func NewNATSBus(conn *nats.Conn) *NATSBus {
	return &NATSBus{conn: conn}
}

// Request implements Bus
func (b *NATSBus) Request(ctx context.Context, msg *Msg) (*Msg, error) {
	out := nats.NewMsg(msg.Subject)
	out.Header = msg.Header
	out.Data = msg.Data

	reply, err := b.conn.RequestMsgWithContext(ctx, out)
	if err != nil {
		return nil, err
	}
	return &Msg{Subject: reply.Subject, Header: reply.Header, Data: reply.Data}, nil
}

// QueueSubscribe implements Bus. Each delivery is handled on its own goroutine, tracked
// until its reply is published.
func (b *NATSBus) QueueSubscribe(subject, queue string, handler MsgHandler) (Subscription, error) {
	if b.conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	sub, err := b.conn.QueueSubscribe(subject, queue, func(m *nats.Msg) {
		if !b.enter() {
			// closing: the requester times out rather than reading a reply nobody can publish
			return
		}
		go func() {
			defer b.inflight.Done()
			reply := handler(context.Background(), &Msg{Subject: m.Subject, Header: m.Header, Data: m.Data})
			_ = m.Respond(reply)
		}()
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *NATSBus) enter() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return false
	}
	b.inflight.Add(1)
	return true
}

// Close waits for in-flight replies to be published, then drains the connection and waits
// until it is closed. Drain the subscriptions first so no new request is accepted.
func (b *NATSBus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	if err := waitGroup(ctx, &b.inflight); err != nil {
		return err
	}
	if err := b.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return waitUntil(ctx, b.conn.IsClosed)
}

// MemoryBus implements Bus in process. It is used by tests and single-process runs.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string][]*memorySub
	next   map[string]int
	closed bool
}

type memorySub struct {
	bus     *MemoryBus
	subject string
	handler MsgHandler
}

// NewMemoryBus creates an empty in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[string][]*memorySub),
		next: make(map[string]int),
	}
}

// Request implements Bus. With no subscriber it fails like NATS does.
func (b *MemoryBus) Request(ctx context.Context, msg *Msg) (*Msg, error) {
	sub, err := b.pick(msg.Subject)
	if err != nil {
		return nil, err
	}

	replies := make(chan []byte, 1)
	go func() {
		replies <- sub.handler(context.Background(), &Msg{Subject: msg.Subject, Header: cloneHeader(msg.Header), Data: msg.Data})
	}()

	select {
	case data := <-replies:
		return &Msg{Subject: msg.Subject, Data: data}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueSubscribe implements Bus. Subscribers of one subject are picked round-robin.
func (b *MemoryBus) QueueSubscribe(subject, _ string, handler MsgHandler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nats.ErrConnectionClosed
	}
	sub := &memorySub{bus: b, subject: subject, handler: handler}
	b.subs[subject] = append(b.subs[subject], sub)
	return sub, nil
}

// Close makes every later request fail as on a closed connection
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *MemoryBus) pick(subject string) (*memorySub, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nats.ErrConnectionClosed
	}
	subs := b.subs[subject]
	if len(subs) == 0 {
		return nil, nats.ErrNoResponders
	}
	i := b.next[subject] % len(subs)
	b.next[subject] = i + 1
	return subs[i], nil
}

// Drain implements Subscription. Requests are handed over synchronously, so draining is
// unsubscribing.
func (s *memorySub) Drain() error {
	return s.Unsubscribe()
}

// IsValid implements Subscription
func (s *memorySub) IsValid() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	for _, other := range s.bus.subs[s.subject] {
		if other == s {
			return true
		}
	}
	return false
}

// Unsubscribe implements Subscription
func (s *memorySub) Unsubscribe() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.subs[s.subject]
	for i, other := range subs {
		if other == s {
			s.bus.subs[s.subject] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	return nil
}

const pollInterval = 10 * time.Millisecond

// waitUntil polls done until it reports true or ctx ends
func waitUntil(ctx context.Context, done func() bool) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for !done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// waitGroup waits for wg or ctx, whichever ends first
func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneHeader(h nats.Header) nats.Header {
	if h == nil {
		return nil
	}
	out := make(nats.Header, len(h))
	for k, v := range h {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// headerCarrier adapts nats.Header to propagation.TextMapCarrier
type headerCarrier nats.Header

func (c headerCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c headerCarrier) Set(key, value string) {
	nats.Header(c).Set(key, value)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
