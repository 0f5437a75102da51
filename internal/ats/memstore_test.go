package ats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

func TestMemoryStore_InTxRollsBack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	employer := uuid.New()

	err := store.InTx(ctx, func(tx Repository) error {
		require.NoError(t, tx.CreateJob(ctx, &types.Job{ID: uuid.New(), EmployerID: employer, Title: "draft"}))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	jobs, err := store.ListJobsByEmployer(ctx, employer)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMemoryStore_RollbackKeepsWritesOutsideTx(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	employer := uuid.New()

	entered := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- store.InTx(ctx, func(tx Repository) error {
			if err := tx.CreateJob(ctx, &types.Job{ID: uuid.New(), EmployerID: employer, Title: "rolled back"}); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("abort")
		})
	}()
	<-entered

	outside := &types.Job{ID: uuid.New(), EmployerID: employer, Title: "committed"}
	created := make(chan error, 1)
	go func() { created <- store.CreateJob(ctx, outside) }()

	select {
	case err := <-created:
		t.Fatalf("write finished inside a running transaction: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.EqualError(t, <-txErr, "abort")
	require.NoError(t, <-created)

	jobs, err := store.ListJobsByEmployer(ctx, employer)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "committed", jobs[0].Title)
}
