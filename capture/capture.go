// CLAUDE:SUMMARY Rod-driven page capture: element snapshots, screenshots, and stale-selector scans.

// Package capture drives a Chrome instance to snapshot the live page an
// annotation session points at: element context for new annotations,
// screenshots for the report dossier, and stale-selector scans feeding
// orphan cleanup.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the capture browser.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Stealth applies anti-detection patches to every page.
	Stealth bool

	// NavTimeout bounds navigation and page load. Default: 30s.
	NavTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser manages the Chrome connection. Call Start before Open.
type Browser struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowser creates a Browser. Call Start to connect.
func NewBrowser(cfg Config) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// Start connects to the remote Chrome or launches a local one.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("capture: browser is closed")
	}
	if b.browser != nil {
		return nil
	}

	log := b.cfg.Logger
	var wsURL string

	if b.cfg.RemoteURL != "" {
		wsURL = b.cfg.RemoteURL
		log.Info("capture: connecting to remote chrome", "url", wsURL)
	} else {
		l := launcher.New().Headless(true)
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("capture: launch: %w", err)
		}
		wsURL = u
		b.lnch = l
		log.Info("capture: launched local chrome", "url", wsURL)
	}

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("capture: connect: %w", err)
	}
	if err := browser.IgnoreCertErrors(true); err != nil {
		log.Warn("capture: ignore cert errors failed", "error", err)
	}

	b.browser = browser
	return nil
}

// Open creates a page and navigates it to pageURL.
func (b *Browser) Open(ctx context.Context, pageURL string) (*Page, error) {
	b.mu.Lock()
	browser := b.browser
	b.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("capture: browser not started")
	}

	var page *rod.Page
	var err error
	if b.cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("capture: create page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("capture: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("capture: wait load timeout", "url", pageURL, "error", err)
	}

	return &Page{page: page, pageURL: pageURL, logger: b.cfg.Logger}, nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}

// Page is one open tab on the annotated page.
type Page struct {
	page    *rod.Page
	pageURL string
	logger  *slog.Logger
}

// URL returns the address the page was opened at.
func (p *Page) URL() string { return p.pageURL }

// HTML serialises the current DOM as outer HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("capture: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Screenshot captures the full page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	img, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture: screenshot: %w", err)
	}
	return img, nil
}

// ElementShot captures one element as PNG.
func (p *Page) ElementShot(ctx context.Context, selector string) ([]byte, error) {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("capture: element %s: %w", selector, err)
	}
	img, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: element screenshot %s: %w", selector, err)
	}
	return img, nil
}

// Close closes the tab.
func (p *Page) Close() error {
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}
