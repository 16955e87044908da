package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport fails on the listed attempts (1-based) and succeeds otherwise.
type scriptedTransport struct {
	failOn map[int]bool
	calls  int
	body   string
}

func (s *scriptedTransport) Get(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.failOn[s.calls] {
		return "", &StatusError{URL: "test", StatusCode: http.StatusBadGateway}
	}
	return s.body, nil
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestFetcher_SucceedsFirstTry(t *testing.T) {
	transport := &scriptedTransport{body: "<html></html>"}
	sleeper := &recordingSleeper{}
	fetcher := NewFetcher(transport, DefaultFetcherConfig()).WithSleeper(sleeper.Sleep)

	body, ok := fetcher.Fetch(context.Background(), "https://tappedout.net")

	require.True(t, ok)
	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, sleeper.waits)
}

func TestFetcher_SucceedsOnThirdAttempt(t *testing.T) {
	transport := &scriptedTransport{failOn: map[int]bool{1: true, 2: true}, body: "ok"}
	sleeper := &recordingSleeper{}
	fetcher := NewFetcher(transport, FetcherConfig{Retries: 3, Backoff: 10 * time.Second}).WithSleeper(sleeper.Sleep)

	body, ok := fetcher.Fetch(context.Background(), "https://tappedout.net")

	require.True(t, ok)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 3, transport.calls)
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second}, sleeper.waits)
}

func TestFetcher_ExhaustsBudget(t *testing.T) {
	transport := &scriptedTransport{failOn: map[int]bool{1: true, 2: true, 3: true, 4: true}}
	sleeper := &recordingSleeper{}
	fetcher := NewFetcher(transport, FetcherConfig{Retries: 3, Backoff: 10 * time.Second}).WithSleeper(sleeper.Sleep)

	body, ok := fetcher.Fetch(context.Background(), "https://tappedout.net")

	assert.False(t, ok)
	assert.Empty(t, body)
	assert.Equal(t, 3, transport.calls, "no attempts beyond the budget")
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}, sleeper.waits)
}

func TestFetcher_CancelledDuringBackoff(t *testing.T) {
	transport := &scriptedTransport{failOn: map[int]bool{1: true, 2: true, 3: true}}
	fetcher := NewFetcher(transport, DefaultFetcherConfig()).WithSleeper(func(context.Context, time.Duration) error {
		return context.Canceled
	})

	_, ok := fetcher.Fetch(context.Background(), "https://tappedout.net")

	assert.False(t, ok)
	assert.Equal(t, 1, transport.calls)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
}

func TestHTTPTransport_SendsUserAgent(t *testing.T) {
	var gotAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html><body>deck</body></html>"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportOptions{UserAgent: "Mozilla/5.0 Test", Timeout: 5 * time.Second})
	body, err := transport.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, body, "deck")
	assert.Equal(t, "Mozilla/5.0 Test", gotAgent.Load())
}

func TestHTTPTransport_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	transport := NewHTTPTransport(HTTPTransportOptions{Timeout: 5 * time.Second})
	_, err := transport.Get(context.Background(), server.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestFetcher_OverHTTPRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	transport := NewHTTPTransport(HTTPTransportOptions{Timeout: 5 * time.Second})
	fetcher := NewFetcher(transport, FetcherConfig{Retries: 3, Backoff: time.Second}).WithSleeper(sleeper.Sleep)

	body, ok := fetcher.Fetch(context.Background(), server.URL)

	require.True(t, ok)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
}
