// Package session wraps a resty client bound to one base URL. Responses are
// returned exactly as received; nothing is retried or translated.
package session

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// Session forwards HTTP verbs to a fixed base URL and keeps cookies between calls
type Session struct {
	BaseURL string
	client  *resty.Client
}

// Option configures a Session
type Option func(*resty.Client)

// WithoutRedirects makes the session return 3xx responses instead of following them
func WithoutRedirects() Option {
	return func(c *resty.Client) {
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
}

// WithHeader sets a header sent on every request
func WithHeader(key, value string) Option {
	return func(c *resty.Client) {
		c.SetHeader(key, value)
	}
}

// New creates a session for baseURL
func New(baseURL string, opts ...Option) *Session {
	// cookiejar.New only fails on a non-nil options argument
	jar, _ := cookiejar.New(nil)

	client := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar)

	for _, opt := range opts {
		opt(client)
	}

	instrument(client)

	return &Session{
		BaseURL: baseURL,
		client:  client,
	}
}

// Request starts a request bound to ctx for callers that need extra options
func (s *Session) Request(ctx context.Context) *resty.Request {
	return s.client.R().SetContext(ctx)
}

// Get sends GET path
func (s *Session) Get(ctx context.Context, path string) (*resty.Response, error) {
	return s.Request(ctx).Get(path)
}

// Post sends POST path with an optional body
func (s *Session) Post(ctx context.Context, path string, body interface{}) (*resty.Response, error) {
	req := s.Request(ctx)
	if body != nil {
		req.SetBody(body)
	}
	return req.Post(path)
}

// PostJSON sends POST path with body encoded as JSON
func (s *Session) PostJSON(ctx context.Context, path string, body interface{}) (*resty.Response, error) {
	return s.Request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
}

// PostForm sends POST path with a url-encoded form
func (s *Session) PostForm(ctx context.Context, path string, form url.Values) (*resty.Response, error) {
	return s.Request(ctx).
		SetFormDataFromValues(form).
		Post(path)
}

// Put sends PUT path with an optional body
func (s *Session) Put(ctx context.Context, path string, body interface{}) (*resty.Response, error) {
	req := s.Request(ctx)
	if body != nil {
		req.SetBody(body)
	}
	return req.Put(path)
}

// Delete sends DELETE path
func (s *Session) Delete(ctx context.Context, path string) (*resty.Response, error) {
	return s.Request(ctx).Delete(path)
}

// Cookie returns the value of a cookie the jar holds for the base URL
func (s *Session) Cookie(name string) (string, bool) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", false
	}
	for _, c := range s.client.GetClient().Jar.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// SetCookie stores a cookie for the base URL so later requests carry it
func (s *Session) SetCookie(name, value string) error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return err
	}
	s.client.GetClient().Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return nil
}

func instrument(client *resty.Client) {
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		if req.Header.Get(requestIDHeader) == "" && c.Header.Get(requestIDHeader) == "" {
			req.SetHeader(requestIDHeader, uuid.NewString())
		}
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		log.Debug().
			Str("request_id", res.Request.Header.Get(requestIDHeader)).
			Str("method", res.Request.Method).
			Str("url", res.Request.URL).
			Int("status", res.StatusCode()).
			Dur("duration", res.Time()).
			Msg("http request")
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		log.Debug().
			Err(err).
			Str("request_id", req.Header.Get(requestIDHeader)).
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request failed")
	})
}
