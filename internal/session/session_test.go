package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"method":       r.Method,
			"path":         r.URL.Path,
			"content_type": r.Header.Get("Content-Type"),
			"request_id":   r.Header.Get(requestIDHeader),
			"body":         string(body),
		})
	})
	mux.HandleFunc("/set-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil {
			http.Error(w, "anonymous", http.StatusUnauthorized)
			return
		}
		io.WriteString(w, c.Value)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "from-redirect", Path: "/"})
		http.Redirect(w, r, "/whoami", http.StatusFound)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_ForwardsVerbsToBaseURL(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() (string, error)
		wantMethod string
	}{
		{
			name: "get",
			call: func() (string, error) {
				res, err := s.Get(ctx, "/echo")
				return res.String(), err
			},
			wantMethod: http.MethodGet,
		},
		{
			name: "post",
			call: func() (string, error) {
				res, err := s.Post(ctx, "/echo", nil)
				return res.String(), err
			},
			wantMethod: http.MethodPost,
		},
		{
			name: "put",
			call: func() (string, error) {
				res, err := s.Put(ctx, "/echo", "payload")
				return res.String(), err
			},
			wantMethod: http.MethodPut,
		},
		{
			name: "delete",
			call: func() (string, error) {
				res, err := s.Delete(ctx, "/echo")
				return res.String(), err
			},
			wantMethod: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.call()
			require.NoError(t, err)

			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.wantMethod, got["method"])
			assert.Equal(t, "/echo", got["path"])
			assert.NotEmpty(t, got["request_id"], "every request should carry a request id")
		})
	}
}

func TestSession_PostJSON(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)

	res, err := s.PostJSON(context.Background(), "/echo", map[string]string{"Email": "a@b.c", "Password": "x"})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(res.Body(), &got))
	assert.Equal(t, "application/json", got["content_type"])
	assert.JSONEq(t, `{"Email":"a@b.c","Password":"x"}`, got["body"])
}

func TestSession_PostForm(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)

	res, err := s.PostForm(context.Background(), "/echo", url.Values{"removefromcart": {"1", "2"}})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(res.Body(), &got))
	assert.Contains(t, got["content_type"], "application/x-www-form-urlencoded")
	assert.Equal(t, "removefromcart=1&removefromcart=2", got["body"])
}

func TestSession_KeepsCookiesBetweenCalls(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)
	ctx := context.Background()

	res, err := s.Get(ctx, "/whoami")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode())

	_, err = s.Get(ctx, "/set-cookie")
	require.NoError(t, err)

	value, ok := s.Cookie("token")
	require.True(t, ok)
	assert.Equal(t, "abc", value)

	res, err = s.Get(ctx, "/whoami")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())
	assert.Equal(t, "abc", res.String())
}

func TestSession_SetCookie(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)

	require.NoError(t, s.SetCookie("token", "injected"))

	res, err := s.Get(context.Background(), "/whoami")
	require.NoError(t, err)
	assert.Equal(t, "injected", res.String())
}

func TestSession_WithoutRedirects(t *testing.T) {
	srv := newTestServer(t)

	t.Run("follows redirects by default", func(t *testing.T) {
		s := New(srv.URL)
		res, err := s.Get(context.Background(), "/redirect")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode())
		assert.Equal(t, "from-redirect", res.String())
	})

	t.Run("returns the redirect response", func(t *testing.T) {
		s := New(srv.URL, WithoutRedirects())
		res, err := s.Get(context.Background(), "/redirect")
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, res.StatusCode())

		var found bool
		for _, c := range res.Cookies() {
			if c.Name == "token" && c.Value == "from-redirect" {
				found = true
			}
		}
		assert.True(t, found, "Set-Cookie of the redirect response should be visible")
	})
}

func TestSession_DoesNotTranslateHTTPErrors(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL)

	res, err := s.Get(context.Background(), "/boom")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode())
	assert.Contains(t, res.String(), "boom")
}

func TestSession_SurfacesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	s := New(baseURL)
	_, err := s.Get(context.Background(), "/anything")
	assert.Error(t, err)
}

func TestSession_WithHeader(t *testing.T) {
	srv := newTestServer(t)
	s := New(srv.URL, WithHeader(requestIDHeader, "fixed-id"))

	res, err := s.Get(context.Background(), "/echo")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(res.Body(), &got))
	assert.Equal(t, "fixed-id", got["request_id"])
}
