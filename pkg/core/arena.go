package core

// arenaBlockSize is the number of values per arena block. Blocks are never
// reallocated, so pointers returned by Alloc stay valid until Rewind.
const arenaBlockSize = 64

// Arena is a per-evaluation allocator handing out values by index. Callers
// take a Mark before an evaluation and Rewind to it when the evaluation's
// frame exits, which releases everything allocated since the mark at once.
// An Arena is owned by a single worker and is not safe for concurrent use.
type Arena[T any] struct {
	blocks [][]T
	used   int
}

// NewArena creates an arena with room for capacity values before growing
func NewArena[T any](capacity int) *Arena[T] {
	a := &Arena[T]{}
	for len(a.blocks)*arenaBlockSize < capacity {
		a.blocks = append(a.blocks, make([]T, arenaBlockSize))
	}
	return a
}

// Alloc returns a zeroed value owned by the arena and its index
func (a *Arena[T]) Alloc() (*T, int) {
	idx := a.used
	if idx/arenaBlockSize == len(a.blocks) {
		a.blocks = append(a.blocks, make([]T, arenaBlockSize))
	}
	item := a.At(idx)
	var zero T
	*item = zero
	a.used++
	return item, idx
}

// At returns the value stored at index idx
func (a *Arena[T]) At(idx int) *T {
	return &a.blocks[idx/arenaBlockSize][idx%arenaBlockSize]
}

// Mark returns the current allocation watermark
func (a *Arena[T]) Mark() int {
	return a.used
}

// Rewind releases every allocation made after mark
func (a *Arena[T]) Rewind(mark int) {
	if mark < a.used {
		a.used = mark
	}
}

// Len returns the number of live allocations
func (a *Arena[T]) Len() int {
	return a.used
}
