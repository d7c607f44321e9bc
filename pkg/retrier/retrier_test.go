package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	r := New()
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, attempts)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoReturnsLastErrorAfterBudget(t *testing.T) {
	r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
	attempts := 0
	wantErr := errors.New("still broken")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 3, attempts)
}

func TestPermanentErrorStopsImmediately(t *testing.T) {
	r := New(WithMaxRetries(5), WithInitialInterval(time.Millisecond))
	attempts := 0
	wantErr := errors.New("no data for that date")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(wantErr)
	})
	require.Equal(t, wantErr, err, "Permanent marker must be unwrapped")
	require.Equal(t, 1, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	r := New(WithMaxRetries(10), WithInitialInterval(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData(t *testing.T) {
	r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
	attempts := 0
	value, err := DoWithData(r, context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestPermanentNil(t *testing.T) {
	require.NoError(t, Permanent(nil))
}
