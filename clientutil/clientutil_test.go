package clientutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "final")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Chain(mark("a"), mark("b"), mark("c"))(final)
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "final"}, order)
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Chain(
		WithUserAgent("lyricsmd/test"),
		WithHeaders(http.Header{"Accept-Language": {"en-US,en;q=0.9"}, "Dnt": {"1"}}),
	)(final)

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Dnt", "0")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "lyricsmd/test", got.Get("User-Agent"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "0", got.Get("Dnt"))
	assert.Empty(t, req.Header.Get("User-Agent"), "original request must not be mutated")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	final := RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	rt := WithRateLimit(50 * time.Millisecond)(final)

	start := time.Now()
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		_, err := rt.RoundTrip(req)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(v))

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("k", []byte("v"))
	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestWrapDoesNotMutate(t *testing.T) {
	t.Parallel()

	orig := &http.Client{Timeout: time.Second}
	wrapped := Wrap(orig, Passthrough)
	assert.Nil(t, orig.Transport)
	assert.Equal(t, time.Second, wrapped.Timeout)
	assert.NotNil(t, wrapped.Transport)
}
