// Marketplace login with a human-in-the-loop gate.
// Two-factor prompts and device confirmations cannot be automated away,
// so after submitting credentials the flow blocks on an operator
// confirmation and re-checks the session cookie, forever if need be.

package login

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"marketbot/internal/browser"
	"marketbot/internal/config"
)

const (
	mainPageURL       = "https://www.facebook.com/"
	sessionCookieName = "c_user"
)

// Confirmer blocks until a human signals that the out-of-band login
// step (2FA, device approval) is done. Tests inject an instant one.
type Confirmer interface {
	WaitForConfirmation()
}

// ConsoleConfirmer waits for Enter on stdin.
type ConsoleConfirmer struct{}

func (ConsoleConfirmer) WaitForConfirmation() {
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}

type Login struct {
	session   *browser.Session
	selectors config.LoginSelectors
	email     string
	password  string
	humanize  *browser.Humanizer
	confirm   Confirmer
	log       *logrus.Logger
}

func New(session *browser.Session, selectors config.LoginSelectors, email, password string,
	humanize *browser.Humanizer, confirm Confirmer, log *logrus.Logger) *Login {
	return &Login{
		session:   session,
		selectors: selectors,
		email:     email,
		password:  password,
		humanize:  humanize,
		confirm:   confirm,
		log:       log,
	}
}

// Do ensures the session is authenticated. Already-authenticated
// sessions short-circuit on the session cookie. Otherwise the form is
// submitted and the loop blocks on human confirmation until the cookie
// shows up; there is deliberately no retry bound.
func (l *Login) Do(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := l.session.Page()
		if _, err := page.Goto(mainPageURL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(60000),
		}); err != nil {
			return fmt.Errorf("could not open main page: %w", err)
		}
		l.humanize.Delay()

		if l.loggedIn() {
			l.log.Info("✅ Successfully logged in to Facebook.")
			return nil
		}

		if err := l.submitForm(page); err != nil {
			return err
		}
		l.humanize.Delay()

		l.log.Info("🔐 Confirm login on your device or in the browser, then press Enter to continue...")
		l.confirm.WaitForConfirmation()

		if l.loggedIn() {
			l.log.Info("✅ Successfully logged in to Facebook.")
			return nil
		}

		l.log.Error("❌ Failed to log in to Facebook: check credentials and the confirmation prompt. Retrying...")
	}
}

func (l *Login) submitForm(page playwright.Page) error {
	email := page.Locator(l.selectors.Email)
	if err := email.Click(); err != nil {
		return fmt.Errorf("could not focus email field: %w", err)
	}
	if err := email.PressSequentially(l.email, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(120),
	}); err != nil {
		return fmt.Errorf("could not type email: %w", err)
	}
	l.humanize.Delay()

	password := page.Locator(l.selectors.Password)
	if err := password.Click(); err != nil {
		return fmt.Errorf("could not focus password field: %w", err)
	}
	if err := password.PressSequentially(l.password, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(120),
	}); err != nil {
		return fmt.Errorf("could not type password: %w", err)
	}
	l.humanize.Delay()

	l.log.Infof("🔑 Attempting to log in to Facebook with email '%s'", l.email)
	if err := page.Locator(l.selectors.LoginButton).Click(); err != nil {
		return fmt.Errorf("could not click login button: %w", err)
	}
	return nil
}

func (l *Login) loggedIn() bool {
	cookies, err := l.session.Cookies()
	if err != nil {
		l.log.Errorf("⚠️ Could not read cookies: %v", err)
		return false
	}
	for _, c := range cookies {
		if strings.Contains(c.Name, sessionCookieName) {
			return true
		}
	}
	return false
}
