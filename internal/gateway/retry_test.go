package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 5*time.Second, policy.NextDelay(5), "clamped to max delay")
	assert.Equal(t, time.Second, policy.NextDelay(0))

	assert.Equal(t, 100*time.Millisecond, RetryPolicy{}.NextDelay(1))
}

// flakyTransport fails the first failures calls, then answers 200.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`[]`)),
		Request:    req,
	}, nil
}

func newFlakyClient(failures int32, maxRetries int) (*Client, *flakyTransport) {
	flaky := &flakyTransport{failures: failures}
	c := &Client{
		baseURL: "http://server.test",
		client:  &http.Client{Transport: &AuthTransport{Base: flaky}},
		retry:   RetryPolicy{MaxRetries: maxRetries, InitialDelay: time.Millisecond},
	}
	return c, flaky
}

func TestClient_RetriesIdempotentCalls(t *testing.T) {
	c, flaky := newFlakyClient(2, 2)

	resp, err := c.Do(context.Background(), http.MethodGet, "/users", "", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	c, flaky := newFlakyClient(5, 2)

	_, err := c.Do(context.Background(), http.MethodGet, "/users", "", "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	c, flaky := newFlakyClient(1, 3)

	_, err := c.Do(context.Background(), http.MethodPost, "/users", "", "", []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, int32(1), flaky.calls.Load())
}

func TestClient_StopsOnCancel(t *testing.T) {
	c, _ := newFlakyClient(5, 5)
	c.retry.InitialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Do(ctx, http.MethodGet, "/users", "", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
