package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/rabbitmq"
)

const (
	breakerFailureLimit = 3
	breakerCooldown     = 5 * time.Minute
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker guards the mirror publisher. After three consecutive
// failures it opens for a cooldown, then lets one trial publish through.
type CircuitBreaker struct {
	state    breakerState
	failures int
	openedAt time.Time
	now      func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{now: time.Now}
}

// Allow reports whether a publish attempt may proceed.
func (b *CircuitBreaker) Allow() bool {
	switch b.state {
	case breakerClosed, breakerHalfOpen:
		return true
	case breakerOpen:
		if b.now().Sub(b.openedAt) >= breakerCooldown {
			b.state = breakerHalfOpen
			return true
		}
		return false
	}
	return false
}

// Success records a successful publish and closes the breaker.
func (b *CircuitBreaker) Success() {
	b.state = breakerClosed
	b.failures = 0
}

// Failure records a failed publish. The half-open trial failing reopens
// immediately.
func (b *CircuitBreaker) Failure() {
	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.openedAt = b.now()
		return
	}
	b.failures++
	if b.failures >= breakerFailureLimit {
		b.state = breakerOpen
		b.openedAt = b.now()
	}
}

// Mirror asynchronously republishes committed log entries to the
// broker. It must never block or fail a lifecycle write: the queue is
// bounded and overflow is dropped and counted.
type Mirror struct {
	publisher rabbitmq.Publisher
	exchange  string
	queue     chan models.BreakLogDetail
	breaker   *CircuitBreaker
	dropped   atomic.Int64
	skipped   atomic.Int64
}

// NewMirror creates a new mirror sink. publisher may be nil; entries
// are then counted as dropped.
func NewMirror(publisher rabbitmq.Publisher, exchange string, queueSize int) *Mirror {
	return &Mirror{
		publisher: publisher,
		exchange:  exchange,
		queue:     make(chan models.BreakLogDetail, queueSize),
		breaker:   NewCircuitBreaker(),
	}
}

// Enqueue hands an entry to the publisher goroutine without blocking.
func (m *Mirror) Enqueue(entry models.BreakLogDetail) {
	if m.publisher == nil {
		m.dropped.Add(1)
		return
	}
	select {
	case m.queue <- entry:
	default:
		m.dropped.Add(1)
	}
}

// Dropped returns how many entries overflowed the queue or arrived with
// no broker configured.
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

// Skipped returns how many entries the open breaker refused to send.
func (m *Mirror) Skipped() int64 {
	return m.skipped.Load()
}

// Run drains the queue until the context is cancelled. Single consumer;
// the breaker state needs no locking.
func (m *Mirror) Run(ctx context.Context) {
	slog.Info("Mirror publisher started", "exchange", m.exchange)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Mirror publisher stopped",
				"dropped", m.Dropped(),
				"skipped", m.Skipped())
			return
		case entry := <-m.queue:
			m.send(&entry)
		}
	}
}

func (m *Mirror) send(entry *models.BreakLogDetail) {
	if !m.breaker.Allow() {
		m.skipped.Add(1)
		return
	}

	body, err := json.Marshal(entry)
	if err != nil {
		slog.Error("Failed to marshal mirror entry", "error", err)
		return
	}

	if err := m.publisher.Publish(m.exchange, body); err != nil {
		m.breaker.Failure()
		slog.Error("Mirror publish failed", "error", err, "exchange", m.exchange)
		return
	}
	m.breaker.Success()
}
