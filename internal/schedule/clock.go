package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoActiveDays means no active slot exists in the next 7 days.
// There is no well-defined future wake time, so the caller must treat
// this as fatal rather than retry.
var ErrNoActiveDays = errors.New("no active days found in the next 7 days")

const daysInWeek = 7

// Clock computes the next active posting slot from the static weekly
// schedule and suspends until it. Every call re-evaluates from the
// current wall-clock time; nothing is carried over between waits.
type Clock struct {
	weekly *Weekly
	log    *logrus.Logger

	//injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClock(weekly *Weekly, log *logrus.Logger) *Clock {
	return &Clock{
		weekly: weekly,
		log:    log,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// NextActiveSlot scans the 7 days starting at now's weekday and returns
// the earliest strictly-future active (day, posting time) timestamp.
// A slot whose time already passed today is excluded, not deferred to
// next week, matching the run-once-per-scan wait policy.
func (c *Clock) NextActiveSlot(now time.Time) (time.Time, error) {
	var best time.Time

	for _, day := range c.weekly.ActiveDays() {
		daysUntil := (int(day.Weekday) - int(now.Weekday()) + daysInWeek) % daysInWeek
		slot := day.PostTimeOn(now.AddDate(0, 0, daysUntil))
		if !slot.After(now) {
			continue
		}
		if best.IsZero() || slot.Before(best) {
			best = slot
		}
	}

	if best.IsZero() {
		return time.Time{}, ErrNoActiveDays
	}
	return best, nil
}

// WaitUntilNextActiveSlot suspends until the next active slot, or
// returns ErrNoActiveDays / the context error.
func (c *Clock) WaitUntilNextActiveSlot(ctx context.Context) error {
	now := c.now()

	slot, err := c.NextActiveSlot(now)
	if err != nil {
		c.log.Warn("⚠️ No active days found in the next 7 days.")
		return err
	}

	delay := slot.Sub(now)
	c.log.Infof("⏰ Next posting slot: %s at %s. Waiting %.1f hours.",
		slot.Weekday(), slot.Format("15:04"), delay.Hours())
	return c.sleep(ctx, delay)
}

// WaitUntil suspends until the absolute timestamp t (used for the
// same-day "now < postTime" wait in the publish loop).
func (c *Clock) WaitUntil(ctx context.Context, t time.Time) error {
	delay := t.Sub(c.now())
	if delay <= 0 {
		return nil
	}
	c.log.Infof("⏳ Waiting for posting time: %.1f hours...", delay.Hours())
	return c.sleep(ctx, delay)
}

// Now returns the clock's current time (injectable in tests).
func (c *Clock) Now() time.Time {
	return c.now()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
