package vdrive

import (
	"context"
	"fmt"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryPool is an in-memory Pool. The simulator runs on it, and tests use
// it to script pool behavior, including states a healthy LVM backend would
// never produce.
type MemoryPool struct {
	mu     sync.Mutex
	total  uint64
	used   uint64
	vols   []Volume
	seq    int
	closed bool
}

var _ Pool = (*MemoryPool)(nil)

// NewMemoryPool returns an empty pool with the given total capacity.
func NewMemoryPool(total uint64) *MemoryPool {
	return &MemoryPool{total: total}
}

// Seed appends volume records verbatim, without validation, so callers
// can stage corrupt or duplicate entries.
func (p *MemoryPool) Seed(vols ...Volume) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range vols {
		p.vols = append(p.vols, v)
		p.used += v.Size
	}
}

// Resize changes a seeded volume's size in place, simulating a volume
// that grew or shrank behind the registry's back.
func (p *MemoryPool) Resize(id VolumeID, size uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.vols {
		if p.vols[i].ID == id {
			p.used += size - p.vols[i].Size
			p.vols[i].Size = size
			return true
		}
	}
	return false
}

// Close marks the pool unreachable. Every later call fails with
// ErrPoolUnavailable.
func (p *MemoryPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Volumes returns a copy of the volume list in creation order.
func (p *MemoryPool) Volumes(ctx context.Context) ([]Volume, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.Wrap(ErrPoolUnavailable, "memory pool closed")
	}
	out := make([]Volume, len(p.vols))
	copy(out, p.vols)
	return out, nil
}

// TotalCapacity returns the configured pool size.
func (p *MemoryPool) TotalCapacity(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.Wrap(ErrPoolUnavailable, "memory pool closed")
	}
	return p.total, nil
}

// RemainingCapacity returns total minus the sum of existing volumes.
func (p *MemoryPool) RemainingCapacity(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.Wrap(ErrPoolUnavailable, "memory pool closed")
	}
	if p.used > p.total {
		return 0, nil
	}
	return p.total - p.used, nil
}

// Allocate creates a volume. An empty name yields a generated vdriveN
// name.
func (p *MemoryPool) Allocate(ctx context.Context, name string, size uint64) (Volume, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Volume{}, errors.Wrap(ErrPoolUnavailable, "memory pool closed")
	}
	var free uint64
	if p.total > p.used {
		free = p.total - p.used
	}
	if size == 0 || size > free {
		return Volume{}, errors.Wrapf(ErrInsufficientSpace, "requested %s from pool with %s free",
			datasize.ByteSize(size).HR(), datasize.ByteSize(free).HR())
	}
	if name == "" {
		name = fmt.Sprintf("vdrive%d", p.seq)
		p.seq++
	}
	for _, v := range p.vols {
		if v.Name == name {
			return Volume{}, errors.Errorf("volume %q already exists", name)
		}
	}
	vol := Volume{ID: VolumeID(uuid.NewString()), Name: name, Size: size}
	p.vols = append(p.vols, vol)
	p.used += size
	return vol, nil
}

// Free removes the volume with the given id.
func (p *MemoryPool) Free(ctx context.Context, id VolumeID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.Wrap(ErrPoolUnavailable, "memory pool closed")
	}
	for i, v := range p.vols {
		if v.ID == id {
			p.used -= v.Size
			p.vols = append(p.vols[:i], p.vols[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "no volume with id %s", id)
}
