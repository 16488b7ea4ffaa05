package sctp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Complete(t *testing.T) {
	f := NewFuture()
	select {
	case <-f.Done():
		t.Fatal("future settled before Complete")
	default:
	}

	f.Complete(42)

	select {
	case <-f.Done():
	default:
		t.Fatal("future not settled after Complete")
	}

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_Fail(t *testing.T) {
	f := NewFuture()
	wantErr := errors.New("boom")
	f.Fail(wantErr)

	v, err := f.Wait()
	assert.Nil(t, v)
	assert.Equal(t, wantErr, err)
}

func TestFuture_Complete_Idempotent(t *testing.T) {
	f := NewFuture()
	f.Complete(1)
	f.Complete(2) // no-op, already settled
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_Result_ContextDone(t *testing.T) {
	f := NewFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	v, err := f.Result(ctx)
	assert.Nil(t, v)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_Result_SettlesBeforeContext(t *testing.T) {
	f := NewFuture()
	f.Complete("done")
	ctx := context.Background()
	v, err := f.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
