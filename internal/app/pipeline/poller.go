package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/juju/clock"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Poller owns the steady-state loop: wait for the interval, request every
// value after the cursor, forward, advance. It is not safe for concurrent use.
type Poller struct {
	agent   ports.Agent
	fwd     *Forwarder
	policy  ports.PollPolicy
	obs     ports.Observability
	clock   clock.Clock
	backoff *backoff.ExponentialBackOff

	cursor   domain.Cursor
	lastPoll time.Time
	// retryIn is non-zero while the last poll failed.
	retryIn time.Duration
}

func NewPoller(agent ports.Agent, fwd *Forwarder, pol ports.PollPolicy, obs ports.Observability, clk clock.Clock, start domain.Cursor) *Poller {
	if clk == nil {
		clk = clock.WallClock
	}
	if pol.MaxFailureBackoff < pol.Interval {
		pol.MaxFailureBackoff = pol.Interval
	}
	if pol.BackoffMultiplier < 1 {
		pol.BackoffMultiplier = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pol.Interval
	b.MaxInterval = pol.MaxFailureBackoff
	b.Multiplier = pol.BackoffMultiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	return &Poller{
		agent:    agent,
		fwd:      fwd,
		policy:   pol,
		obs:      obs,
		clock:    clk,
		backoff:  b,
		cursor:   start,
		lastPoll: clk.Now(),
	}
}

// Cursor is the value the next poll will send as from.
func (p *Poller) Cursor() domain.Cursor { return p.cursor }

// Run polls until ctx is cancelled and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.nextWait()):
		}
		p.PollOnce(ctx)
	}
}

// PollOnce performs one sample request. On failure the cursor and the last
// poll time are left untouched and the next wait comes from the failure
// back-off.
func (p *Poller) PollOnce(ctx context.Context) bool {
	start := p.clock.Now()
	p.obs.IncCounter("mtc_polls_total", 1)

	snap, err := p.agent.Sample(ctx, p.cursor)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.retryIn = p.backoff.NextBackOff()
		p.obs.IncCounter("mtc_poll_failures_total", 1)
		p.obs.LogError("sample_failed", err,
			ports.Field{Key: "cursor", Value: p.cursor.String()},
			ports.Field{Key: "retry_in", Value: p.retryIn.String()})
		return false
	}

	p.cursor = p.fwd.Forward(ctx, snap)
	p.lastPoll = start
	p.retryIn = 0
	p.backoff.Reset()
	return true
}

// nextWait is the time left until the interval boundary, or the failure
// back-off after a failed poll.
func (p *Poller) nextWait() time.Duration {
	if p.retryIn > 0 {
		return p.retryIn
	}
	remaining := p.policy.Interval - p.clock.Now().Sub(p.lastPoll)
	if remaining < 0 {
		return 0
	}
	return remaining
}
