package tree

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/types"
)

// SequenceUpdate is one (node, new sequence) assignment to persist. The
// sequencer functions are pure: they compute assignments from the current
// active-sibling list and never touch the store.
type SequenceUpdate struct {
	NodeID   uuid.UUID
	Sequence int
}

// InsertAt computes the shifts needed to open a slot for a new sibling.
// siblings must be the active set ordered by sequence. A nil requested
// position appends; otherwise the position is clamped to [1, len+1].
// Returns the shift list and the sequence assigned to the new node.
func InsertAt(siblings []*types.ClassNode, requested *int) ([]SequenceUpdate, int) {
	target := len(siblings) + 1
	if requested != nil {
		target = *requested
		if target < 1 {
			target = 1
		}
		if target > len(siblings)+1 {
			target = len(siblings) + 1
		}
	}
	var shifts []SequenceUpdate
	for _, sibling := range siblings {
		if sibling.Sequence >= target {
			shifts = append(shifts, SequenceUpdate{NodeID: sibling.ID, Sequence: sibling.Sequence + 1})
		}
	}
	return shifts, target
}

// Reorder normalizes a caller-supplied ordering of the full active sibling
// set into a dense 1..N assignment. Items are stable-sorted by their supplied
// sequence, so ties keep the caller's relative order. The item set must match
// the sibling set exactly; duplicates, unknown ids and omissions are errors.
// Only assignments that differ from a node's current sequence are returned.
func Reorder(siblings []*types.ClassNode, items []SequenceUpdate) ([]SequenceUpdate, error) {
	current := make(map[uuid.UUID]int, len(siblings))
	for _, sibling := range siblings {
		current[sibling.ID] = sibling.Sequence
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if seen[item.NodeID] {
			return nil, fmt.Errorf("duplicate node id %s in reorder items", item.NodeID)
		}
		seen[item.NodeID] = true
		if _, ok := current[item.NodeID]; !ok {
			return nil, fmt.Errorf("node %s is not an active sibling in this group", item.NodeID)
		}
	}
	if len(items) != len(siblings) {
		return nil, fmt.Errorf("reorder items cover %d of %d active siblings", len(items), len(siblings))
	}

	ordered := make([]SequenceUpdate, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	var updates []SequenceUpdate
	for idx, item := range ordered {
		want := idx + 1
		if current[item.NodeID] != want {
			updates = append(updates, SequenceUpdate{NodeID: item.NodeID, Sequence: want})
		}
	}
	return updates, nil
}

// CompactAfterRemoval closes the gap left by a soft-deleted sibling:
// every remaining active sibling past the removed position moves down one.
func CompactAfterRemoval(siblings []*types.ClassNode, removedSequence int) []SequenceUpdate {
	var shifts []SequenceUpdate
	for _, sibling := range siblings {
		if sibling.Sequence > removedSequence {
			shifts = append(shifts, SequenceUpdate{NodeID: sibling.ID, Sequence: sibling.Sequence - 1})
		}
	}
	return shifts
}
