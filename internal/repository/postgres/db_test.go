package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func TestGuardLimitsConcurrentQueries(t *testing.T) {
	db := &DB{sem: semaphore.NewWeighted(1)}

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = db.guard(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// The only slot is held; a second query times out waiting for it.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := db.guard(ctx, func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not acquire semaphore")

	close(release)
	assert.NoError(t, db.guard(context.Background(), func(ctx context.Context) error { return nil }))
}

func TestGuardReturnsQueryError(t *testing.T) {
	db := &DB{sem: semaphore.NewWeighted(1)}
	wantErr := errors.New("connection reset")

	err := db.guard(context.Background(), func(ctx context.Context) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestGuardReleasesSlotAfterError(t *testing.T) {
	db := &DB{sem: semaphore.NewWeighted(1)}

	_ = db.guard(context.Background(), func(ctx context.Context) error {
		return errors.New("connection reset")
	})

	// The slot must be free again after a failed query; a leaked slot would
	// time out here instead of hanging the suite.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, db.guard(ctx, func(ctx context.Context) error { return nil }))
}
