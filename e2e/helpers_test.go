package e2e

import (
	"context"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/playwright-community/playwright-go"

	"github.com/themizzi/demoshop-e2e/internal/browser"
	"github.com/themizzi/demoshop-e2e/internal/demoshop"
	"github.com/themizzi/demoshop-e2e/internal/session"
)

// newBrowserSession opens an isolated browser context on WEB_URL, closed when the test ends
func newBrowserSession(t *testing.T) *browser.Session {
	t.Helper()
	bs, err := harness.NewSession(shop.WebURL)
	if err != nil {
		t.Fatalf("Failed to open browser session: %v", err)
	}
	t.Cleanup(func() {
		if err := bs.Close(); err != nil {
			t.Logf("Failed to close browser session: %v", err)
		}
	})
	return bs
}

// apiSession is the session fixture: an HTTP session on API_URL that keeps the 302 of a login
func apiSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(shop.APIURL, session.WithoutRedirects())
}

// shopClient returns a client on a fresh API session
func shopClient(t *testing.T) *demoshop.Client {
	t.Helper()
	return demoshop.NewClient(apiSession(t))
}

// loginThroughAPI logs the client in as LOGIN and returns the auth token
func loginThroughAPI(t *testing.T, client *demoshop.Client) string {
	t.Helper()
	token, err := client.Login(context.Background(), shop.Login, shop.Password)
	if err != nil {
		t.Fatalf("Failed to log in through API: %v", err)
	}
	client.AuthCookie = token
	return token
}

// bridge copies the API auth token into the browser context
func bridge(t *testing.T, bs *browser.Session, token string) {
	t.Helper()
	if err := bs.Bridge(token); err != nil {
		t.Fatalf("Failed to bridge auth cookie into browser: %v", err)
	}
}

// authCookieFrom reads the auth cookie from a login response
func authCookieFrom(t *testing.T, res *resty.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == demoshop.AuthCookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("Login response (status %d) has no %s cookie", res.StatusCode(), demoshop.AuthCookieName)
	return ""
}

// cleanCart empties the logged-in customer's cart now and again when the test ends
func cleanCart(t *testing.T, client *demoshop.Client) {
	t.Helper()
	withCleanup(t, "cart", client.ClearCart)
}

// cleanWishlist empties the logged-in customer's wishlist now and again when the test ends
func cleanWishlist(t *testing.T, client *demoshop.Client) {
	t.Helper()
	withCleanup(t, "wishlist", client.ClearWishlist)
}

// clearCompareList empties the comparison list now and again when the test ends
func clearCompareList(t *testing.T, client *demoshop.Client) {
	t.Helper()
	withCleanup(t, "compare list", client.ClearCompareList)
}

func withCleanup(t *testing.T, name string, clear func(context.Context) error) {
	t.Helper()
	if err := clear(context.Background()); err != nil {
		t.Fatalf("Failed to clear %s before test: %v", name, err)
	}
	t.Cleanup(func() {
		if err := clear(context.Background()); err != nil {
			t.Errorf("Failed to clear %s after test: %v", name, err)
		}
	})
}

// open navigates to a path relative to WEB_URL
func open(t *testing.T, bs *browser.Session, path string) {
	t.Helper()
	if err := bs.Open(path); err != nil {
		t.Fatal(err)
	}
}

// element waits for selector to become visible and fails the test as a missing element if it does not
func element(t *testing.T, page playwright.Page, selector string) playwright.Locator {
	t.Helper()
	loc := page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{State: playwright.WaitForSelectorStateVisible}); err != nil {
		t.Fatalf("Element %q never appeared: %v", selector, err)
	}
	return loc
}

// click clicks the first visible match of selector
func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := element(t, page, selector).Click(); err != nil {
		t.Fatalf("Failed to click %q: %v", selector, err)
	}
}

// expectText asserts the first match of selector contains want
func expectText(t *testing.T, page playwright.Page, selector, want string) {
	t.Helper()
	loc := element(t, page, selector)
	if err := expect().Locator(loc).ToContainText(want); err != nil {
		got, _ := loc.TextContent()
		t.Fatalf("Text mismatch for %q: expected to contain '%s', got '%s'", selector, want, got)
	}
}

// expectExactText asserts the first match of selector has exactly want as text
func expectExactText(t *testing.T, page playwright.Page, selector, want string) {
	t.Helper()
	loc := element(t, page, selector)
	if err := expect().Locator(loc).ToHaveText(want); err != nil {
		got, _ := loc.TextContent()
		t.Fatalf("Text mismatch for %q: expected '%s', got '%s'", selector, want, got)
	}
}

// expectTexts asserts every match of selector, in order, has the wanted texts
func expectTexts(t *testing.T, page playwright.Page, selector string, want []string) {
	t.Helper()
	element(t, page, selector)
	all := page.Locator(selector)
	if err := expect().Locator(all).ToHaveText(want); err != nil {
		got, _ := all.AllTextContents()
		t.Fatalf("Texts mismatch for %q: expected %q, got %q", selector, want, got)
	}
}

func expect() playwright.PlaywrightAssertions {
	return playwright.NewPlaywrightAssertions(browserCfg.TimeoutMillis())
}
