package publisher

import (
	"context"

	"github.com/sirupsen/logrus"

	"marketbot/internal/browser"
	"marketbot/internal/config"
	"marketbot/internal/form"
	"marketbot/internal/gologin"
	"marketbot/internal/listing"
	"marketbot/internal/login"
	"marketbot/utils"
)

// liveSession binds a real browser connection, the login flow and the
// form filler into one PublishSession.
type liveSession struct {
	session *browser.Session
	login   *login.Login
	filler  *form.Filler
}

func (s *liveSession) Login(ctx context.Context) error {
	return s.login.Do(ctx)
}

func (s *liveSession) PublishListing(ctx context.Context, profile *gologin.Profile) error {
	return s.filler.PublishListing(ctx, profile)
}

func (s *liveSession) Close() error {
	return s.session.Close()
}

// NewSessionFactory wires the production publish session: playwright
// over the profile's CDP endpoint, the human-gated login and the
// listing form filler sharing one humanizer and one screenshot dir.
func NewSessionFactory(cfg *config.Config, selectors *config.Selectors, corpus *listing.Corpus,
	ledger form.Recorder, confirm login.Confirmer, log *logrus.Logger) SessionFactory {
	humanize := browser.NewHumanizer(cfg.DelayFromMs, cfg.DelayToMs, nil)
	shots := utils.NewScreenshotDebugger(cfg.ScreenshotsDir, log)

	return func(wsURL string, profile *gologin.Profile) (PublishSession, error) {
		// A profile routed through a proxy with no username cannot
		// authenticate; surface the same skip signal as the global proxy.
		if profile.Proxy.Enabled() && profile.Proxy.Username == "" {
			return nil, browser.ErrProxyCredentials
		}

		session, err := browser.Connect(wsURL, cfg.Proxy, log)
		if err != nil {
			return nil, err
		}

		return &liveSession{
			session: session,
			login: login.New(session, selectors.Login, cfg.FacebookEmail, cfg.FacebookPassword,
				humanize, confirm, log),
			filler: form.NewFiller(session, cfg, selectors.ListingForm, corpus, ledger,
				humanize, shots, log),
		}, nil
	}
}
