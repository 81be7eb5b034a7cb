// Package browser wraps the Playwright browser used by the UI scenarios.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/config"
)

// AuthCookieName is the cookie the shop reads to recognise a logged-in customer
const AuthCookieName = "NOPCOMMERCE.AUTH"

// Errors returned by the browser helpers
var (
	ErrEmptyToken = errors.New("auth token is empty")
	ErrInvalidURL = errors.New("invalid web URL")
)

// Browser is a running Playwright driver plus one launched Chromium
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.BrowserConfig
}

// Launch starts Playwright and a Chromium instance
func Launch(cfg config.BrowserConfig) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(cfg.ExecutablePath)
	}

	b, err := pw.Chromium.Launch(opts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	log.Debug().Bool("headless", cfg.Headless).Str("version", b.Version()).Msg("browser launched")
	return &Browser{pw: pw, browser: b, cfg: cfg}, nil
}

// NewSession opens an isolated context and page whose relative navigations resolve against webURL
func (b *Browser) NewSession(webURL string) (*Session, error) {
	ctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(webURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(b.cfg.TimeoutMillis())

	return &Session{
		Context:     ctx,
		Page:        page,
		WebURL:      webURL,
		artifactDir: b.cfg.ArtifactDir,
	}, nil
}

// Close shuts down the browser and the Playwright driver
func (b *Browser) Close() error {
	var errs []error
	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// Session is one browser context with a single page
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page
	WebURL  string

	artifactDir string
}

// Open navigates the page to a path relative to the web URL
func (s *Session) Open(path string) error {
	res, err := s.Page.Goto(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if res != nil && res.Status() >= 400 {
		return fmt.Errorf("failed to open %s: status %d", path, res.Status())
	}
	return nil
}

// Bridge makes the session act as the customer owning token
func (s *Session) Bridge(token string) error {
	return BridgeSession(s.Context, s.WebURL, token)
}

// SaveScreenshot writes a full-page screenshot into the artifact directory.
// The returned func removes the file again.
func (s *Session) SaveScreenshot(name string) (string, func() error, error) {
	path := ArtifactPath(s.artifactDir, name)
	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", nil, fmt.Errorf("failed to save screenshot: %w", err)
	}

	return path, func() error { return removeArtifact(path) }, nil
}

// removeArtifact deletes path, treating an already missing file as removed
func removeArtifact(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close closes the page and its context
func (s *Session) Close() error {
	return s.Context.Close()
}

// BridgeSession writes the auth cookie obtained over HTTP into a browser context
func BridgeSession(ctx playwright.BrowserContext, webURL, token string) error {
	cookie, err := AuthCookie(webURL, token)
	if err != nil {
		return err
	}
	if err := ctx.AddCookies([]playwright.OptionalCookie{cookie}); err != nil {
		return fmt.Errorf("failed to set auth cookie: %w", err)
	}
	log.Debug().Str("domain", *cookie.Domain).Msg("auth cookie bridged into browser")
	return nil
}

// AuthCookie builds the browser cookie carrying token for the shop at webURL
func AuthCookie(webURL, token string) (playwright.OptionalCookie, error) {
	if token == "" {
		return playwright.OptionalCookie{}, ErrEmptyToken
	}

	u, err := url.Parse(webURL)
	if err != nil || u.Hostname() == "" {
		return playwright.OptionalCookie{}, fmt.Errorf("%w: %q", ErrInvalidURL, webURL)
	}

	return playwright.OptionalCookie{
		Name:     AuthCookieName,
		Value:    token,
		Domain:   playwright.String(u.Hostname()),
		Path:     playwright.String("/"),
		HttpOnly: playwright.Bool(true),
		Secure:   playwright.Bool(u.Scheme == "https"),
		SameSite: playwright.SameSiteAttributeLax,
	}, nil
}

// ArtifactPath places a named artifact in dir, keeping only the file name part of name
func ArtifactPath(dir, name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}
