package core

import "testing"

type arenaItem struct {
	value int
}

func TestArenaAllocAndRewind(t *testing.T) {
	arena := NewArena[arenaItem](2)

	mark := arena.Mark()
	first, idx := arena.Alloc()
	first.value = 7
	if idx != 0 || arena.Len() != 1 {
		t.Fatalf("Expected first allocation at index 0, got %d (len %d)", idx, arena.Len())
	}

	// Force growth past the first block and check earlier pointers survive
	for i := 0; i < 3*arenaBlockSize; i++ {
		item, _ := arena.Alloc()
		item.value = i
	}
	first.value = 9
	if arena.At(0).value != 9 {
		t.Errorf("Pointer from Alloc must stay valid after growth, got %d", arena.At(0).value)
	}

	arena.Rewind(mark)
	if arena.Len() != 0 {
		t.Errorf("Expected empty arena after rewind, got %d", arena.Len())
	}

	reused, idx := arena.Alloc()
	if idx != 0 || reused.value != 0 {
		t.Errorf("Expected zeroed reuse of slot 0, got index %d value %d", idx, reused.value)
	}
}

func TestArenaNestedMarks(t *testing.T) {
	arena := NewArena[arenaItem](0)
	outer := arena.Mark()
	arena.Alloc()
	inner := arena.Mark()
	arena.Alloc()
	arena.Alloc()

	arena.Rewind(inner)
	if arena.Len() != 1 {
		t.Errorf("Expected 1 live allocation after inner rewind, got %d", arena.Len())
	}
	arena.Rewind(outer)
	if arena.Len() != 0 {
		t.Errorf("Expected 0 live allocations after outer rewind, got %d", arena.Len())
	}
}
