package vdrive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPoolAccounting(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(1000)

	total, err := p.TotalCapacity(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, total)

	a, err := p.Allocate(ctx, "", 400)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.EqualValues(t, 400, a.Size)

	free, err := p.RemainingCapacity(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 600, free)

	require.NoError(t, p.Free(ctx, a.ID))
	free, err = p.RemainingCapacity(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, free)
}

func TestMemoryPoolAllocateLimits(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(500)

	_, err := p.Allocate(ctx, "", 0)
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	_, err = p.Allocate(ctx, "", 501)
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	_, err = p.Allocate(ctx, "", 500)
	assert.NoError(t, err)

	_, err = p.Allocate(ctx, "", 1)
	assert.ErrorIs(t, err, ErrInsufficientSpace)
}

func TestMemoryPoolNameHandling(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(1000)

	a, err := p.Allocate(ctx, "", 10)
	require.NoError(t, err)
	b, err := p.Allocate(ctx, "", 10)
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)

	_, err = p.Allocate(ctx, "data", 10)
	require.NoError(t, err)
	_, err = p.Allocate(ctx, "data", 10)
	assert.Error(t, err)
}

func TestMemoryPoolFreeUnknown(t *testing.T) {
	p := NewMemoryPool(1000)
	err := p.Free(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPoolVolumesCopies(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(1000)
	p.Seed(Volume{ID: "id-a", Name: "a", Size: 100})

	vols, err := p.Volumes(ctx)
	require.NoError(t, err)
	require.Len(t, vols, 1)

	// Mutating the returned slice must not reach the pool.
	vols[0].Size = 9999
	again, err := p.Volumes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, again[0].Size)
}

func TestMemoryPoolClosed(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(1000)
	p.Close()

	_, err := p.Volumes(ctx)
	assert.ErrorIs(t, err, ErrPoolUnavailable)
	_, err = p.TotalCapacity(ctx)
	assert.ErrorIs(t, err, ErrPoolUnavailable)
	_, err = p.RemainingCapacity(ctx)
	assert.ErrorIs(t, err, ErrPoolUnavailable)
	_, err = p.Allocate(ctx, "", 10)
	assert.ErrorIs(t, err, ErrPoolUnavailable)
	err = p.Free(ctx, "id")
	assert.ErrorIs(t, err, ErrPoolUnavailable)
}

func TestMemoryPoolResize(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPool(1000)
	p.Seed(Volume{ID: "id-a", Name: "a", Size: 100})

	require.True(t, p.Resize("id-a", 300))
	assert.False(t, p.Resize("missing", 300))

	free, err := p.RemainingCapacity(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 700, free)
}
