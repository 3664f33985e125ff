package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Selectors of the single page application's login flow.
const (
	consentRejectSelector = "#onetrust-reject-all-handler"
	consentBannerSelector = "#onetrust-banner-sdk"
	signInSelector        = ".gw-sign-in .material-icons"
	emailSelector         = "#mat-input-0"
	passwordSelector      = "#mat-input-1"
	submitSelector        = ".gw-btn-sign-in"
	loggedInSelector      = "#gw-parent-menu-link-jobs > .item-title"
)

type BrowserOptions struct {
	BaseURL     string
	Credentials Credentials
	Headless    bool
	// PageLoadDelay is how long client side rendering gets after the
	// network settles.
	PageLoadDelay time.Duration
	// Install downloads the browser binaries before launching.
	Install bool
}

// BrowserSession drives a real chromium instance, the job pages are only
// rendered client side.
type BrowserSession struct {
	opts    BrowserOptions
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func NewBrowserSession(ctx context.Context, opts BrowserOptions) (*BrowserSession, error) {
	ctx, span := tracer.Start(ctx, "browser:Launch")
	defer span.End()

	if opts.Install {
		err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to install browsers")
			return nil, fmt.Errorf("could not install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start playwright")
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			slog.WarnContext(ctx, "failed to stop playwright", "err", stopErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to launch browser")
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err == nil {
		var page playwright.Page
		page, err = browserCtx.NewPage()
		if err == nil {
			slog.InfoContext(ctx, "browser started", "headless", opts.Headless)
			return &BrowserSession{opts: opts, pw: pw, browser: browser, page: page}, nil
		}
	}

	closeErr := errors.Join(browser.Close(), pw.Stop())
	if closeErr != nil {
		slog.WarnContext(ctx, "failed to shut down browser", "err", closeErr)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "failed to open page")
	return nil, fmt.Errorf("could not open page: %w", err)
}

func (s *BrowserSession) goTo(target string) error {
	_, err := s.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	})
	return err
}

func (s *BrowserSession) settle(ctx context.Context) error {
	if s.opts.PageLoadDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.PageLoadDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *BrowserSession) dismissConsent(ctx context.Context) {
	err := s.page.Locator(consentRejectSelector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(20000),
	})
	if err != nil {
		slog.DebugContext(ctx, "no cookie consent dialog", "err", err)
		return
	}
	err = s.page.Locator(consentBannerSelector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(10000),
	})
	if err != nil {
		slog.DebugContext(ctx, "cookie banner still visible", "err", err)
	}
	slog.DebugContext(ctx, "rejected cookie consent")
}

func (s *BrowserSession) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "browser:Login")
	defer span.End()

	fail := func(message string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
		return fmt.Errorf("%w: %s: %w", ErrLoginFailed, message, err)
	}

	err := s.goTo(s.opts.BaseURL)
	if err != nil {
		return fail("failed to open home page", err)
	}
	s.dismissConsent(ctx)

	err = retry(ctx, 3, time.Second*2, func() error {
		return s.page.Locator(signInSelector).First().Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(15000),
		})
	})
	if err != nil {
		return fail("failed to open the sign in dialog", err)
	}

	fill := playwright.LocatorFillOptions{Timeout: playwright.Float(15000)}
	err = s.page.Locator(emailSelector).Fill(s.opts.Credentials.Email, fill)
	if err != nil {
		return fail("failed to fill email", err)
	}
	err = s.page.Locator(passwordSelector).Fill(s.opts.Credentials.Password, fill)
	if err != nil {
		return fail("failed to fill password", err)
	}
	err = s.page.Locator(submitSelector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(15000),
	})
	if err != nil {
		return fail("failed to submit login", err)
	}

	err = s.page.Locator(loggedInSelector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(15000),
	})
	if err != nil {
		return fail("jobs menu did not appear after login", err)
	}

	slog.InfoContext(ctx, "logged in", "driver", "browser", "email", s.opts.Credentials.Email)
	return nil
}

func (s *BrowserSession) lost() bool {
	return s.page.IsClosed() || !s.browser.IsConnected()
}

func (s *BrowserSession) Navigate(ctx context.Context, target string) (Page, error) {
	ctx, span := tracer.Start(ctx, "browser:Navigate", trace.WithAttributes(
		attribute.String("url", target),
	))
	defer span.End()

	err := s.goTo(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		if s.lost() {
			return Page{}, fmt.Errorf("%w: %w", ErrSessionLost, err)
		}
		return Page{}, err
	}
	err = s.settle(ctx)
	if err != nil {
		return Page{}, err
	}

	content, err := s.page.Content()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read page content")
		if s.lost() {
			return Page{}, fmt.Errorf("%w: %w", ErrSessionLost, err)
		}
		return Page{}, err
	}

	final := s.page.URL()
	span.SetAttributes(attribute.String("final_url", final))
	return Page{FinalURL: final, HTML: []byte(content)}, nil
}

func (s *BrowserSession) Close() error {
	var errs []error
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
