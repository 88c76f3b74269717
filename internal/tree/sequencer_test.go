package tree

import (
	"testing"

	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/types"
)

func makeSiblings(n int) []*types.ClassNode {
	classID := uuid.New()
	siblings := make([]*types.ClassNode, 0, n)
	for i := 1; i <= n; i++ {
		siblings = append(siblings, &types.ClassNode{
			ID:       uuid.New(),
			ClassID:  classID,
			Sequence: i,
			IsActive: true,
		})
	}
	return siblings
}

func intPtr(v int) *int { return &v }

func TestInsertAtAppendsWhenNoPositionRequested(t *testing.T) {
	siblings := makeSiblings(3)
	shifts, seq := InsertAt(siblings, nil)
	if seq != 4 {
		t.Fatalf("append sequence: want=4 got=%d", seq)
	}
	if len(shifts) != 0 {
		t.Fatalf("append shifts: want=0 got=%d", len(shifts))
	}
}

func TestInsertAtMiddleShiftsTail(t *testing.T) {
	siblings := makeSiblings(3)
	shifts, seq := InsertAt(siblings, intPtr(2))
	if seq != 2 {
		t.Fatalf("insert sequence: want=2 got=%d", seq)
	}
	if len(shifts) != 2 {
		t.Fatalf("shift count: want=2 got=%d", len(shifts))
	}
	if shifts[0].NodeID != siblings[1].ID || shifts[0].Sequence != 3 {
		t.Fatalf("first shift: want=(%s,3) got=(%s,%d)", siblings[1].ID, shifts[0].NodeID, shifts[0].Sequence)
	}
	if shifts[1].NodeID != siblings[2].ID || shifts[1].Sequence != 4 {
		t.Fatalf("second shift: want=(%s,4) got=(%s,%d)", siblings[2].ID, shifts[1].NodeID, shifts[1].Sequence)
	}
}

func TestInsertAtClampsLowAndHigh(t *testing.T) {
	siblings := makeSiblings(3)

	shiftsLow, seqLow := InsertAt(siblings, intPtr(0))
	shiftsOne, seqOne := InsertAt(siblings, intPtr(1))
	if seqLow != seqOne {
		t.Fatalf("clamp low: want=%d got=%d", seqOne, seqLow)
	}
	if len(shiftsLow) != len(shiftsOne) {
		t.Fatalf("clamp low shifts: want=%d got=%d", len(shiftsOne), len(shiftsLow))
	}

	shiftsHigh, seqHigh := InsertAt(siblings, intPtr(99))
	if seqHigh != 4 {
		t.Fatalf("clamp high: want=4 got=%d", seqHigh)
	}
	if len(shiftsHigh) != 0 {
		t.Fatalf("clamp high shifts: want=0 got=%d", len(shiftsHigh))
	}
}

func TestInsertAtEmptyGroup(t *testing.T) {
	shifts, seq := InsertAt(nil, intPtr(5))
	if seq != 1 {
		t.Fatalf("empty group sequence: want=1 got=%d", seq)
	}
	if len(shifts) != 0 {
		t.Fatalf("empty group shifts: want=0 got=%d", len(shifts))
	}
}

func TestReorderAssignsDenseSequence(t *testing.T) {
	siblings := makeSiblings(3)
	// reverse the group
	items := []SequenceUpdate{
		{NodeID: siblings[0].ID, Sequence: 3},
		{NodeID: siblings[1].ID, Sequence: 2},
		{NodeID: siblings[2].ID, Sequence: 1},
	}
	updates, err := Reorder(siblings, items)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	// middle sibling keeps sequence 2, so only the ends move
	if len(updates) != 2 {
		t.Fatalf("update count: want=2 got=%d", len(updates))
	}
	got := map[uuid.UUID]int{}
	for _, u := range updates {
		got[u.NodeID] = u.Sequence
	}
	if got[siblings[2].ID] != 1 {
		t.Fatalf("reordered head: want=1 got=%d", got[siblings[2].ID])
	}
	if got[siblings[0].ID] != 3 {
		t.Fatalf("reordered tail: want=3 got=%d", got[siblings[0].ID])
	}
}

func TestReorderNormalizesSparseInput(t *testing.T) {
	siblings := makeSiblings(3)
	items := []SequenceUpdate{
		{NodeID: siblings[0].ID, Sequence: 10},
		{NodeID: siblings[1].ID, Sequence: 20},
		{NodeID: siblings[2].ID, Sequence: 30},
	}
	updates, err := Reorder(siblings, items)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("sparse input preserving order should change nothing, got %d updates", len(updates))
	}
}

func TestReorderBreaksTiesByItemOrder(t *testing.T) {
	siblings := makeSiblings(3)
	items := []SequenceUpdate{
		{NodeID: siblings[2].ID, Sequence: 1},
		{NodeID: siblings[0].ID, Sequence: 1},
		{NodeID: siblings[1].ID, Sequence: 1},
	}
	updates, err := Reorder(siblings, items)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	got := map[uuid.UUID]int{}
	for _, u := range updates {
		got[u.NodeID] = u.Sequence
	}
	if got[siblings[2].ID] != 1 {
		t.Fatalf("tie order first: want=1 got=%d", got[siblings[2].ID])
	}
	if got[siblings[1].ID] != 3 {
		t.Fatalf("tie order last: want=3 got=%d", got[siblings[1].ID])
	}
}

func TestReorderRejectsPartialSet(t *testing.T) {
	siblings := makeSiblings(3)
	items := []SequenceUpdate{
		{NodeID: siblings[0].ID, Sequence: 1},
		{NodeID: siblings[1].ID, Sequence: 2},
	}
	if _, err := Reorder(siblings, items); err == nil {
		t.Fatalf("Reorder: expected error for omitted sibling")
	}
}

func TestReorderRejectsForeignNode(t *testing.T) {
	siblings := makeSiblings(2)
	items := []SequenceUpdate{
		{NodeID: siblings[0].ID, Sequence: 1},
		{NodeID: uuid.New(), Sequence: 2},
	}
	if _, err := Reorder(siblings, items); err == nil {
		t.Fatalf("Reorder: expected error for non-sibling id")
	}
}

func TestReorderRejectsDuplicateIDs(t *testing.T) {
	siblings := makeSiblings(2)
	items := []SequenceUpdate{
		{NodeID: siblings[0].ID, Sequence: 1},
		{NodeID: siblings[0].ID, Sequence: 2},
	}
	if _, err := Reorder(siblings, items); err == nil {
		t.Fatalf("Reorder: expected error for duplicate id")
	}
}

func TestCompactAfterRemovalClosesGapExactlyOnce(t *testing.T) {
	siblings := makeSiblings(5)
	// position 3 was removed; remaining siblings are 1,2,4,5
	remaining := []*types.ClassNode{siblings[0], siblings[1], siblings[3], siblings[4]}
	shifts := CompactAfterRemoval(remaining, 3)
	if len(shifts) != 2 {
		t.Fatalf("shift count: want=2 got=%d", len(shifts))
	}
	if shifts[0].NodeID != siblings[3].ID || shifts[0].Sequence != 3 {
		t.Fatalf("first shift: want=(%s,3) got=(%s,%d)", siblings[3].ID, shifts[0].NodeID, shifts[0].Sequence)
	}
	if shifts[1].NodeID != siblings[4].ID || shifts[1].Sequence != 4 {
		t.Fatalf("second shift: want=(%s,4) got=(%s,%d)", siblings[4].ID, shifts[1].NodeID, shifts[1].Sequence)
	}
}

func TestCompactAfterRemovalOfLastSibling(t *testing.T) {
	siblings := makeSiblings(3)
	remaining := []*types.ClassNode{siblings[0], siblings[1]}
	shifts := CompactAfterRemoval(remaining, 3)
	if len(shifts) != 0 {
		t.Fatalf("removing the tail should shift nothing, got %d", len(shifts))
	}
}

// Density invariant across a random-ish mixed workload: after each mutation
// the active sequences must be exactly 1..N.
func TestSequencerPreservesDensityAcrossMixedOperations(t *testing.T) {
	classID := uuid.New()
	var siblings []*types.ClassNode

	apply := func(updates []SequenceUpdate) {
		byID := map[uuid.UUID]*types.ClassNode{}
		for _, s := range siblings {
			byID[s.ID] = s
		}
		for _, u := range updates {
			byID[u.NodeID].Sequence = u.Sequence
		}
	}
	checkDense := func(step string) {
		seen := map[int]bool{}
		for _, s := range siblings {
			if seen[s.Sequence] {
				t.Fatalf("%s: duplicate sequence %d", step, s.Sequence)
			}
			seen[s.Sequence] = true
		}
		for i := 1; i <= len(siblings); i++ {
			if !seen[i] {
				t.Fatalf("%s: missing sequence %d (N=%d)", step, i, len(siblings))
			}
		}
	}
	insert := func(pos *int) {
		shifts, seq := InsertAt(siblings, pos)
		apply(shifts)
		siblings = append(siblings, &types.ClassNode{ID: uuid.New(), ClassID: classID, Sequence: seq, IsActive: true})
	}
	remove := func(idx int) {
		removed := siblings[idx]
		siblings = append(siblings[:idx], siblings[idx+1:]...)
		apply(CompactAfterRemoval(siblings, removed.Sequence))
	}

	insert(nil)
	checkDense("insert-1")
	insert(nil)
	checkDense("insert-2")
	insert(intPtr(1))
	checkDense("insert-head")
	insert(intPtr(3))
	checkDense("insert-mid")
	remove(1)
	checkDense("remove-mid")
	insert(intPtr(0))
	checkDense("insert-clamped")
	remove(0)
	checkDense("remove-head")
	remove(len(siblings) - 1)
	checkDense("remove-tail")
}
