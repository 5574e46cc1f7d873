package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"marketbot/internal/config"
)

// ErrProxyCredentials means the proxy is enabled but has no username;
// the profile cannot authenticate and must be skipped for this cycle.
var ErrProxyCredentials = errors.New("proxy enabled but username is empty")

// Session is one live playwright connection to a started GoLogin
// profile, attached over its CDP websocket endpoint.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	log     *logrus.Logger
}

// Connect attaches to the profile's browser over CDP and prepares a page.
// Proxy credentials are validated up front so a misconfigured profile
// fails before any navigation happens.
func Connect(wsURL string, proxy config.Proxy, log *logrus.Logger) (*Session, error) {
	if proxy.Enabled && proxy.Username == "" {
		return nil, ErrProxyCredentials
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.ConnectOverCDP(wsURL)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not connect to browser endpoint: %w", err)
	}

	context, err := pickContext(browser, proxy)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, err
	}

	page, err := pickPage(context)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, err
	}

	//mask automation a little, as a regular referred visit
	page.SetExtraHTTPHeaders(map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://www.google.com/",
	})

	if proxy.Enabled {
		log.Infof("🌐 Proxy enabled: %s@%s:%d", proxy.Username, proxy.Host, proxy.Port)
	}
	log.Info("✅ Browser session attached.")

	return &Session{pw: pw, browser: browser, context: context, page: page, log: log}, nil
}

func pickContext(browser playwright.Browser, proxy config.Proxy) (playwright.BrowserContext, error) {
	if contexts := browser.Contexts(); len(contexts) > 0 {
		return contexts[0], nil
	}

	opts := playwright.BrowserNewContextOptions{}
	if proxy.Enabled {
		opts.HttpCredentials = &playwright.HttpCredentials{
			Username: proxy.Username,
			Password: proxy.Password,
		}
	}
	context, err := browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	return context, nil
}

func pickPage(context playwright.BrowserContext) (playwright.Page, error) {
	if pages := context.Pages(); len(pages) > 0 {
		return pages[0], nil
	}
	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return page, nil
}

func (s *Session) Page() playwright.Page {
	return s.page
}

// Cookies returns the context's cookies (used for the logged-in check).
func (s *Session) Cookies() ([]playwright.Cookie, error) {
	return s.context.Cookies()
}

func (s *Session) Close() error {
	err := s.browser.Close()
	if stopErr := s.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}
