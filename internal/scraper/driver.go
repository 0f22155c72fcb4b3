package scraper

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Element is one DOM node returned by a Session query. It exposes only what
// the extraction rules need, so tests can substitute canned elements.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, bool)
	Elements(selector string) ([]Element, error)
}

// Session is one live page against the dealer site. The scraper owns exactly
// one session per run and must Close it on every exit path.
type Session interface {
	WaitStable(d time.Duration)
	Elements(selector string) ([]Element, error)
	Eval(js string) (string, error)
	Close() error
}

// Driver opens browser sessions. The production implementation drives a
// headless Chromium through rod; tests use a fake.
type Driver interface {
	Open(url string, timeout time.Duration) (Session, error)
}

// RodDriver launches a headless Chromium per session via go-rod.
type RodDriver struct {
	chromeBin string
}

// NewRodDriver creates a driver. chromeBin overrides binary discovery when
// non-empty; otherwise CHROME_BIN and common install paths are probed.
func NewRodDriver(chromeBin string) *RodDriver {
	return &RodDriver{chromeBin: chromeBin}
}

// Open launches a browser, opens a stealth page, and navigates to url.
// Launch/connect failures come back as SessionUnavailableError; navigation
// failures as NavigationTimeoutError. On error no resources are left behind.
func (d *RodDriver) Open(url string, timeout time.Duration) (Session, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("window-size", "1920,1080").
		Set("user-agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	if bin := d.resolveChromeBin(); bin != "" {
		fmt.Printf("🔍 Using Chromium at: %s\n", bin)
		l = l.Bin(bin)
	}

	if isDockerEnvironment() {
		fmt.Println("🐳 Docker environment detected, applying container-specific settings")
		l = l.Set("disable-setuid-sandbox").
			Set("no-first-run").
			Set("disable-default-apps").
			Set("single-process")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, &SessionUnavailableError{Err: err}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, &SessionUnavailableError{Err: fmt.Errorf("failed to connect to browser: %w", err)}
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, &SessionUnavailableError{Err: fmt.Errorf("failed to open page: %w", err)}
	}

	nav := page.Timeout(timeout)
	if err := nav.Navigate(url); err != nil {
		page.Close()
		browser.Close()
		return nil, &NavigationTimeoutError{URL: url, Timeout: timeout, Err: err}
	}
	if err := nav.WaitLoad(); err != nil {
		page.Close()
		browser.Close()
		return nil, &NavigationTimeoutError{URL: url, Timeout: timeout, Err: err}
	}

	return &rodSession{browser: browser, page: page}, nil
}

func (d *RodDriver) resolveChromeBin() string {
	if d.chromeBin != "" {
		return d.chromeBin
	}
	return findChromiumPath()
}

type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
}

func (s *rodSession) WaitStable(d time.Duration) {
	// Autotrader renders listing cards client-side after load
	time.Sleep(d)
}

func (s *rodSession) Elements(selector string) ([]Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	wrapped := make([]Element, 0, len(els))
	for _, el := range els {
		wrapped = append(wrapped, &rodElement{el: el})
	}
	return wrapped, nil
}

func (s *rodSession) Eval(js string) (string, error) {
	res, err := s.page.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (s *rodSession) Close() error {
	s.page.Close()
	return s.browser.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool) {
	val, err := e.el.Attribute(name)
	if err != nil || val == nil {
		return "", false
	}
	return *val, true
}

func (e *rodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	wrapped := make([]Element, 0, len(els))
	for _, el := range els {
		wrapped = append(wrapped, &rodElement{el: el})
	}
	return wrapped, nil
}

// findChromiumPath looks for a Chrome/Chromium binary in common locations
func findChromiumPath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// isDockerEnvironment checks if running inside Docker
func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
	}

	return false
}
