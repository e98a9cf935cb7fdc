package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &Error{StatusCode: 429}, true},
		{"internal error", &Error{StatusCode: 500}, true},
		{"bad gateway", &Error{StatusCode: 502}, true},
		{"unavailable", &Error{StatusCode: 503}, true},
		{"gateway timeout", &Error{StatusCode: 504}, true},
		{"unauthorized", &Error{StatusCode: 401}, false},
		{"not found", &Error{StatusCode: 404}, false},
		{"bad request", &Error{StatusCode: 400}, false},
		{"statusless", &Error{Message: "invalid response body"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Retryable(tc.err))
		})
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := NewRetryPolicy(3, 1.0)
	var slept []time.Duration
	policy.sleep = func(d time.Duration) { slept = append(slept, d) }

	calls := 0
	raw, err := policy.Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if calls < 3 {
			return nil, &Error{Message: "unavailable", StatusCode: 503}
		}
		return json.RawMessage(`{"ok":true}`), nil
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 3, calls)

	// Backoff grows by 1.5 per attempt: 1.5s before the second try,
	// 2.25s before the third.
	require.Len(t, slept, 2)
	assert.Equal(t, 1500*time.Millisecond, slept[0])
	assert.Equal(t, 2250*time.Millisecond, slept[1])
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	policy := NewRetryPolicy(3, 1.0)
	policy.sleep = func(time.Duration) { t.Fatal("must not sleep for a non-retryable error") }

	calls := 0
	_, err := policy.Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return nil, &Error{Message: "forbidden", StatusCode: 403}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 403, StatusOf(err))
}

func TestDoStopsOnTransportError(t *testing.T) {
	policy := NewRetryPolicy(3, 1.0)
	policy.sleep = func(time.Duration) { t.Fatal("must not sleep for a transport error") }

	transportErr := errors.New("dial tcp: connection refused")
	calls := 0
	_, err := policy.Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return nil, transportErr
	})

	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsLastErrorAfterExhaustion(t *testing.T) {
	policy := NewRetryPolicy(3, 0.1)
	policy.sleep = func(time.Duration) {}

	calls := 0
	_, err := policy.Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return nil, &Error{Message: "still down", StatusCode: 502}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "still down", apiErr.Message)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	policy := NewRetryPolicy(5, 0.1)
	policy.sleep = func(time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := policy.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
		calls++
		cancel()
		return nil, &Error{Message: "unavailable", StatusCode: 503}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWrapComposes(t *testing.T) {
	policy := NewRetryPolicy(2, 0.1)
	policy.sleep = func(time.Duration) {}

	calls := 0
	wrapped := policy.Wrap(func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return nil, &Error{StatusCode: 429, Message: "slow down"}
		}
		return json.RawMessage(`[]`), nil
	})

	raw, err := wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
	assert.Equal(t, 2, calls)
}
