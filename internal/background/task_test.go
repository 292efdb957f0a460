package background

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTaskStore_StoreAndGet(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	result := &TaskResult{
		ProcessID: "proc-1",
		Type:      TaskTypeWatch,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Store(ctx, result))

	got, err := store.Get(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusAccepted, got.Status)
	assert.Equal(t, TaskTypeWatch, got.Type)
}

func TestInMemoryTaskStore_GetUnknownTask(t *testing.T) {
	store := NewInMemoryTaskStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestInMemoryTaskStore_UpdateRequiresExisting(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	err := store.Update(ctx, &TaskResult{ProcessID: "missing"})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, store.Store(ctx, &TaskResult{ProcessID: "proc-1", Status: TaskStatusAccepted, CreatedAt: time.Now()}))
	require.NoError(t, store.Update(ctx, &TaskResult{ProcessID: "proc-1", Status: TaskStatusSuccess, CreatedAt: time.Now()}))

	got, err := store.Get(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusSuccess, got.Status)
}

func TestInMemoryTaskStore_CleanupRemovesExpired(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	old := &TaskResult{ProcessID: "old", CreatedAt: time.Now().Add(-2 * time.Hour)}
	fresh := &TaskResult{ProcessID: "fresh", CreatedAt: time.Now()}
	require.NoError(t, store.Store(ctx, old))
	require.NoError(t, store.Store(ctx, fresh))

	require.NoError(t, store.Cleanup(ctx, time.Hour))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
