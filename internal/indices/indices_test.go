package indices_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spool-ml/spool/internal/indices"
)

func TestLinear_AssignsFreshIdentifiers(t *testing.T) {
	m := indices.NewLinear()

	var a, b indices.Identifier
	m.Assign(&a)
	m.Assign(&b)

	assert.Equal(t, indices.Identifier(1), a)
	assert.Equal(t, indices.Identifier(2), b)
	assert.Equal(t, indices.Identifier(2), m.LargestCreated())

	// Linear never recycles: freeing and reassigning grows the counter.
	m.Free(&a)
	assert.Equal(t, indices.Inactive, a)
	m.Assign(&a)
	assert.Equal(t, indices.Identifier(3), a)
}

func TestLinear_ResetReplaysIdentifierSequence(t *testing.T) {
	m := indices.NewLinear()
	var a, b indices.Identifier
	m.Assign(&a)
	m.Assign(&b)

	m.Reset()
	var c, d indices.Identifier
	m.Assign(&c)
	m.Assign(&d)
	assert.Equal(t, a, c)
	assert.Equal(t, b, d)
	assert.Equal(t, indices.Identifier(2), m.LargestCreated(), "high-water mark survives reset")
}

// TestReuse_RecycleBeforeGrowth is the freed-slot reuse scenario: allocate
// three identifiers, free the second, allocate again; the freed identifier
// must come back before the counter grows.
func TestReuse_RecycleBeforeGrowth(t *testing.T) {
	m := indices.NewReuse(indices.WithBlockSize(8))

	var a, b, c indices.Identifier
	m.Assign(&a)
	m.Assign(&b)
	m.Assign(&c)

	freed := b
	m.Free(&b)
	assert.Equal(t, indices.Inactive, b)

	var d indices.Identifier
	grew := m.Assign(&d)
	assert.False(t, grew)
	assert.Equal(t, freed, d, "freed identifier must be reused before growth")
}

func TestReuse_NeverIssuesSentinel(t *testing.T) {
	m := indices.NewReuse(indices.WithBlockSize(4))
	seen := map[indices.Identifier]bool{}
	for i := 0; i < 64; i++ {
		var id indices.Identifier
		m.Assign(&id)
		require.True(t, indices.IsActive(id), "sentinel must never be assigned")
		require.False(t, seen[id], "identifier %d issued twice without free", id)
		seen[id] = true
	}
}

func TestReuse_AssignKeepsActiveIdentifier(t *testing.T) {
	m := indices.NewReuse()
	var id indices.Identifier
	m.Assign(&id)
	before := id
	grew := m.Assign(&id)
	assert.False(t, grew)
	assert.Equal(t, before, id)
}

func TestReuse_ResetReturnsPool(t *testing.T) {
	m := indices.NewReuse(indices.WithBlockSize(4), indices.WithSortedReset())
	var a, b indices.Identifier
	m.Assign(&a)
	m.Assign(&b)
	high := m.LargestCreated()

	m.Free(&a)
	m.Free(&b)
	m.Reset()
	assert.Equal(t, high, m.LargestCreated(), "reset must not shrink the high-water mark")

	// After reset the recycled identifiers are available again.
	var c indices.Identifier
	grew := m.Assign(&c)
	assert.False(t, grew)
}

func TestMultiUse_CopySharesSlot(t *testing.T) {
	m := indices.NewMultiUse()

	var src indices.Identifier
	m.Assign(&src)
	require.Equal(t, int32(1), m.UseCount(src))

	var dst indices.Identifier
	m.Copy(&dst, src)
	assert.Equal(t, src, dst)
	assert.Equal(t, int32(2), m.UseCount(src))

	// Releasing one holder keeps the slot alive.
	m.Free(&dst)
	assert.Equal(t, int32(1), m.UseCount(src))

	// Releasing the last holder recycles it.
	freed := src
	m.Free(&src)
	var next indices.Identifier
	grew := m.Assign(&next)
	assert.False(t, grew)
	assert.Equal(t, freed, next)
}

func TestMultiUse_SelfCopyIsNoOp(t *testing.T) {
	m := indices.NewMultiUse()
	var id indices.Identifier
	m.Assign(&id)

	same := id
	m.Copy(&id, same)
	assert.Equal(t, same, id)
	assert.Equal(t, int32(1), m.UseCount(id), "self-copy must not touch the refcount")
}

func TestMultiUse_AssignToSharedSlotGetsNewIdentifier(t *testing.T) {
	m := indices.NewMultiUse()
	var src, dst indices.Identifier
	m.Assign(&src)
	m.Copy(&dst, src)

	// Writing through dst while the slot is shared must move dst to a fresh
	// slot and leave src untouched.
	m.Assign(&dst)
	assert.NotEqual(t, src, dst)
	assert.Equal(t, int32(1), m.UseCount(src))
	assert.Equal(t, int32(1), m.UseCount(dst))
}

func TestMultiUse_CopyFromPassiveDeactivates(t *testing.T) {
	m := indices.NewMultiUse()
	var dst indices.Identifier
	m.Assign(&dst)
	m.Copy(&dst, indices.Inactive)
	assert.Equal(t, indices.Inactive, dst)
}

func TestParallel_DisjointRangesAcrossGoroutines(t *testing.T) {
	global := indices.NewGlobalCounter()

	const workers = 4
	const perWorker = 1000

	results := make([][]indices.Identifier, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			m := indices.NewParallel(global)
			ids := make([]indices.Identifier, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				var id indices.Identifier
				m.Assign(&id)
				ids = append(ids, id)
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := map[indices.Identifier]bool{}
	for _, ids := range results {
		for _, id := range ids {
			require.True(t, indices.IsActive(id))
			require.False(t, seen[id], "identifier %d issued to two managers", id)
			seen[id] = true
		}
	}
	assert.GreaterOrEqual(t, int(global.Largest()), workers*perWorker)
}

func TestParallel_LocalRecycling(t *testing.T) {
	global := indices.NewGlobalCounter()
	m := indices.NewParallel(global)

	var a indices.Identifier
	m.Assign(&a)
	freed := a
	m.Free(&a)

	var b indices.Identifier
	grew := m.Assign(&b)
	assert.False(t, grew)
	assert.Equal(t, freed, b)
}

func TestSentinelInvariant(t *testing.T) {
	assert.False(t, indices.IsActive(indices.Inactive))
}
