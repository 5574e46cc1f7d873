// Posting cycle orchestrator.
// Sleeps until the weekly schedule's next active slot, then walks that
// day's profiles one at a time: provision the browser identity, log in,
// publish the day's quota of listings, tear the identity down. One
// profile's failure never stops the cycle, and one listing's failure
// never stops the profile's remaining attempts.

package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketbot/internal/browser"
	"marketbot/internal/gologin"
	"marketbot/internal/listing"
	"marketbot/internal/schedule"
)

// Provisioner starts and stops browser identities. Satisfied by the
// GoLogin client.
type Provisioner interface {
	ProfileByID(ctx context.Context, profileID string) (*gologin.Profile, error)
	StartProfile(ctx context.Context, profileID string) (string, error)
	StopProfile(ctx context.Context, profileID string) error
}

// PublishSession is one authenticated browser session able to publish
// listings for the profile it was opened for.
type PublishSession interface {
	Login(ctx context.Context) error
	PublishListing(ctx context.Context, profile *gologin.Profile) error
	Close() error
}

// SessionFactory opens a publish session against a started profile's
// websocket endpoint. It may fail without failing the cycle, e.g. on
// bad proxy credentials.
type SessionFactory func(wsURL string, profile *gologin.Profile) (PublishSession, error)

// Notifier pushes run events to an external channel. A nil Notifier
// disables notifications.
type Notifier interface {
	SendPublished(profileName, title string) error
	SendError(err error) error
	SendStatus(message string) error
}

type Publisher struct {
	clock       *schedule.Clock
	weekly      *schedule.Weekly
	selector    *listing.Selector
	corpus      *listing.Corpus
	provisioner Provisioner
	sessions    SessionFactory
	notifier    Notifier
	log         *logrus.Logger
}

func New(clock *schedule.Clock, weekly *schedule.Weekly, selector *listing.Selector,
	corpus *listing.Corpus, provisioner Provisioner, sessions SessionFactory,
	notifier Notifier, log *logrus.Logger) *Publisher {
	return &Publisher{
		clock:       clock,
		weekly:      weekly,
		selector:    selector,
		corpus:      corpus,
		provisioner: provisioner,
		sessions:    sessions,
		notifier:    notifier,
		log:         log,
	}
}

// Run executes posting cycles until the context is cancelled. It
// returns ErrNoActiveDays when the schedule has no runnable slot, which
// the caller must treat as fatal.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		if err := p.clock.WaitUntilNextActiveSlot(ctx); err != nil {
			return err
		}

		now := p.clock.Now()
		day := p.weekly.Day(now.Weekday())
		if !day.Active {
			continue
		}

		// The wake can land before the exact posting time; close the gap.
		if err := p.clock.WaitUntil(ctx, day.PostTimeOn(now)); err != nil {
			return err
		}

		p.runDay(ctx, day)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (p *Publisher) runDay(ctx context.Context, day schedule.Day) {
	cycleID := uuid.NewString()
	p.log.Infof("🚀 Posting cycle %s started: %s, %d posts per profile, %d profiles.",
		cycleID, day.Weekday, day.PostsCount, len(day.ProfileIDs))
	p.notifyStatus(fmt.Sprintf("Posting cycle started: %s, %d profiles.", day.Weekday, len(day.ProfileIDs)))

	for _, profileID := range day.ProfileIDs {
		if ctx.Err() != nil {
			return
		}
		if err := p.runProfile(ctx, day, profileID); err != nil {
			p.log.Errorf("❌ Profile %s failed: %v. Continuing with the next profile.", profileID, err)
			p.notifyError(fmt.Errorf("profile %s: %w", profileID, err))
		}
	}

	p.log.Infof("🏁 Posting cycle %s finished.", cycleID)
}

// runProfile publishes up to day.PostsCount listings through one
// profile. The identity is provisioned exactly once and torn down
// exactly once, no matter how the attempts in between go. Login and
// listing selection happen freshly before every post: login
// short-circuits on the session cookie, and re-selecting lets a
// mid-cycle corpus exhaustion reset the ledger and keep posting.
func (p *Publisher) runProfile(ctx context.Context, day schedule.Day, profileID string) error {
	profile, err := p.provisioner.ProfileByID(ctx, profileID)
	if err != nil {
		return err
	}

	if p.corpus.Len() == 0 {
		p.log.Infof("ℹ️ Nothing to post for profile %s.", profile.Name)
		return nil
	}

	wsURL, err := p.provisioner.StartProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if wsURL == "" {
		p.log.Warnf("⚠️ Profile %s gave no browser endpoint. Skipping for this cycle.", profile.Name)
		return nil
	}
	defer func() {
		// The run context may already be cancelled on shutdown; the
		// started browser identity must still be stopped.
		if err := p.provisioner.StopProfile(context.WithoutCancel(ctx), profileID); err != nil {
			p.log.Errorf("⚠️ Could not stop profile %s: %v", profile.Name, err)
		}
	}()

	session, err := p.sessions(wsURL, profile)
	if err != nil {
		if errors.Is(err, browser.ErrProxyCredentials) {
			p.log.Warnf("⚠️ Profile %s has no proxy username. Skipping for this cycle.", profile.Name)
			return nil
		}
		return err
	}
	defer session.Close()

	published := 0
	for attempt := 0; attempt < day.PostsCount; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := session.Login(ctx); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		indices, err := p.selector.UnpostedIndices(profileID)
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			break
		}
		index := p.selector.Pick(indices)

		profile.AssignListing(index)
		err = session.PublishListing(ctx, profile)
		profile.ClearListing()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Errorf("⚠️ Could not publish listing %d with profile %s: %v. Continuing with the next listing.",
				index, profile.Name, err)
			p.notifyError(fmt.Errorf("profile %s, listing %d: %w", profile.Name, index, err))
			continue
		}

		published++
		if title, err := p.corpus.Title(index); err == nil {
			p.notifyPublished(profile.Name, title)
		}
	}

	p.log.Infof("💾 Profile %s published %d/%d listings.", profile.Name, published, day.PostsCount)
	return nil
}

func (p *Publisher) notifyStatus(message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.SendStatus(message); err != nil {
		p.log.Errorf("⚠️ Could not send status notification: %v", err)
	}
}

func (p *Publisher) notifyError(cause error) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.SendError(cause); err != nil {
		p.log.Errorf("⚠️ Could not send error notification: %v", err)
	}
}

func (p *Publisher) notifyPublished(profileName, title string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.SendPublished(profileName, title); err != nil {
		p.log.Errorf("⚠️ Could not send publish notification: %v", err)
	}
}
