// Package arena provides the per-tape scratch memory used while evaluating
// low-level function callbacks. Allocations are block-based and released all
// at once with Free; the IsEmpty discipline makes leaks inside a callback
// detectable.
package arena

// pool hands out slices of T carved from fixed-size blocks.
type pool[T any] struct {
	blocks    [][]T
	blockSize int
	cur       int
	live      int
}

func (p *pool[T]) alloc(n int) []T {
	if n == 0 {
		return nil
	}
	if n > p.blockSize {
		// Oversized requests get a dedicated block.
		block := make([]T, n)
		p.blocks = append(p.blocks, block)
		p.cur = len(p.blocks) - 1
		p.live += n
		return block
	}
	if p.cur >= len(p.blocks) {
		p.blocks = append(p.blocks, make([]T, 0, p.blockSize))
	}
	b := p.blocks[p.cur]
	if len(b)+n > cap(b) {
		p.cur++
		if p.cur == len(p.blocks) {
			p.blocks = append(p.blocks, make([]T, 0, p.blockSize))
		}
		b = p.blocks[p.cur]
	}
	start := len(b)
	b = b[:start+n]
	var zero T
	for i := start; i < start+n; i++ {
		b[i] = zero
	}
	p.blocks[p.cur] = b
	p.live += n
	return b[start : start+n]
}

func (p *pool[T]) free() {
	for i := range p.blocks {
		p.blocks[i] = p.blocks[i][:0]
	}
	p.cur = 0
	p.live = 0
}

// Arena is a scratch allocator for reals, identifiers and raw bytes.
//
// Allocated slices stay valid until Free. Free releases everything at once;
// a caller that still holds live allocations afterwards is using stale
// memory, which is why users bracket each callback with Free and an IsEmpty
// check.
type Arena struct {
	reals pool[float64]
	ids   pool[int32]
	bytes pool[byte]
}

// DefaultBlockSize is the per-pool block capacity in elements.
const DefaultBlockSize = 4096

// New creates an Arena with the given per-pool block size in elements.
func New(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{
		reals: pool[float64]{blockSize: blockSize},
		ids:   pool[int32]{blockSize: blockSize},
		bytes: pool[byte]{blockSize: blockSize},
	}
}

// AllocReals returns a zeroed scratch slice of n reals.
func (a *Arena) AllocReals(n int) []float64 { return a.reals.alloc(n) }

// AllocIdentifiers returns a zeroed scratch slice of n identifiers.
func (a *Arena) AllocIdentifiers(n int) []int32 { return a.ids.alloc(n) }

// AllocBytes returns a zeroed scratch slice of n bytes.
func (a *Arena) AllocBytes(n int) []byte { return a.bytes.alloc(n) }

// InUse returns the total number of live elements across all pools.
func (a *Arena) InUse() int {
	return a.reals.live + a.ids.live + a.bytes.live
}

// IsEmpty reports whether no allocations are live.
func (a *Arena) IsEmpty() bool { return a.InUse() == 0 }

// Free releases all allocations. Block storage is retained for reuse.
func (a *Arena) Free() {
	a.reals.free()
	a.ids.free()
	a.bytes.free()
}
