package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"breaktime-service/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	published [][]byte
	exchanges []string
	err       error
}

func (p *fakePublisher) Publish(exchange string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.exchanges = append(p.exchanges, exchange)
	p.published = append(p.published, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	b := &CircuitBreaker{now: func() time.Time { return now }}

	assert.True(t, b.Allow())
	b.Failure()
	b.Failure()
	assert.True(t, b.Allow())

	b.Failure()
	assert.False(t, b.Allow())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewCircuitBreaker()

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.True(t, b.Allow())
}

func TestCircuitBreaker_HalfOpenAfterCooldown(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	b := &CircuitBreaker{now: func() time.Time { return now }}

	b.Failure()
	b.Failure()
	b.Failure()
	assert.False(t, b.Allow())

	// Still inside the cooldown.
	now = now.Add(breakerCooldown - time.Second)
	assert.False(t, b.Allow())

	// Cooldown elapsed, one trial allowed.
	now = now.Add(2 * time.Second)
	assert.True(t, b.Allow())

	// Trial failing reopens immediately.
	b.Failure()
	assert.False(t, b.Allow())

	// Trial succeeding closes fully.
	now = now.Add(breakerCooldown)
	assert.True(t, b.Allow())
	b.Success()
	assert.True(t, b.Allow())
}

func mirrorEntry(userID int64) models.BreakLogDetail {
	return models.BreakLogDetail{
		BreakLogEntry: models.BreakLogEntry{
			UserID: userID,
			Action: models.ActionOut,
			Source: models.SourceBot,
		},
		FullName:      "Agent",
		BreakTypeCode: "B",
	}
}

func TestMirrorEnqueue_DropsOnOverflow(t *testing.T) {
	pub := &fakePublisher{}
	m := NewMirror(pub, "breaktime.mirror", 2)

	m.Enqueue(mirrorEntry(1))
	m.Enqueue(mirrorEntry(2))
	m.Enqueue(mirrorEntry(3)) // queue full, dropped

	assert.Equal(t, int64(1), m.Dropped())
}

func TestMirrorEnqueue_NoPublisher(t *testing.T) {
	m := NewMirror(nil, "breaktime.mirror", 2)

	m.Enqueue(mirrorEntry(1))
	assert.Equal(t, int64(1), m.Dropped())
}

func TestMirrorRun_PublishesQueuedEntries(t *testing.T) {
	pub := &fakePublisher{}
	m := NewMirror(pub, "breaktime.mirror", 8)

	m.Enqueue(mirrorEntry(1))
	m.Enqueue(mirrorEntry(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return pub.count() == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, []string{"breaktime.mirror", "breaktime.mirror"}, pub.exchanges)
	assert.Equal(t, int64(0), m.Dropped())
}

func TestMirrorSend_FailuresTripBreaker(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	m := NewMirror(pub, "breaktime.mirror", 8)

	e := mirrorEntry(1)
	m.send(&e)
	m.send(&e)
	m.send(&e)

	// Breaker is open now; further sends are skipped without publishing.
	m.send(&e)
	assert.Equal(t, int64(1), m.Skipped())
}
