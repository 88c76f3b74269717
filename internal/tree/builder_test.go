package tree

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/types"
)

func makeNode(classID uuid.UUID, parentID *uuid.UUID, seq int, active bool) *types.ClassNode {
	return &types.ClassNode{
		ID:       uuid.New(),
		ClassID:  classID,
		ParentID: parentID,
		Sequence: seq,
		IsActive: active,
	}
}

func countItems(items []*types.TreeItem) int {
	total := 0
	for _, item := range items {
		total += 1 + countItems(item.Children)
	}
	return total
}

func TestBuildNestsChildrenUnderParents(t *testing.T) {
	classID := uuid.New()
	rootA := makeNode(classID, nil, 1, true)
	rootB := makeNode(classID, nil, 2, true)
	childA2 := makeNode(classID, &rootA.ID, 2, true)
	childA1 := makeNode(classID, &rootA.ID, 1, true)
	grandchild := makeNode(classID, &childA1.ID, 1, true)

	// deliberately unordered input
	items, err := Build([]*types.ClassNode{grandchild, childA2, rootB, childA1, rootA}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("root count: want=2 got=%d", len(items))
	}
	if items[0].Node.ID != rootA.ID || items[1].Node.ID != rootB.ID {
		t.Fatalf("roots out of sequence order")
	}
	if len(items[0].Children) != 2 {
		t.Fatalf("rootA child count: want=2 got=%d", len(items[0].Children))
	}
	if items[0].Children[0].Node.ID != childA1.ID {
		t.Fatalf("rootA children out of sequence order")
	}
	if len(items[0].Children[0].Children) != 1 || items[0].Children[0].Children[0].Node.ID != grandchild.ID {
		t.Fatalf("grandchild not attached under childA1")
	}
	if items[1].Children == nil || len(items[1].Children) != 0 {
		t.Fatalf("leaf children must be empty, not nil")
	}
	if got := countItems(items); got != 5 {
		t.Fatalf("total node count: want=5 got=%d", got)
	}
}

func TestBuildFiltersInactiveNodes(t *testing.T) {
	classID := uuid.New()
	root := makeNode(classID, nil, 1, true)
	activeChild := makeNode(classID, &root.ID, 1, true)
	inactiveChild := makeNode(classID, &root.ID, 2, false)

	items, err := Build([]*types.ClassNode{root, activeChild, inactiveChild}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := countItems(items); got != 2 {
		t.Fatalf("active count: want=2 got=%d", got)
	}

	all, err := Build([]*types.ClassNode{root, activeChild, inactiveChild}, false)
	if err != nil {
		t.Fatalf("Build all: %v", err)
	}
	if got := countItems(all); got != 3 {
		t.Fatalf("unfiltered count: want=3 got=%d", got)
	}
}

func TestBuildSkipsSubtreeOfFilteredParent(t *testing.T) {
	classID := uuid.New()
	root := makeNode(classID, nil, 1, true)
	inactiveChild := makeNode(classID, &root.ID, 1, false)
	orphanedGrandchild := makeNode(classID, &inactiveChild.ID, 1, true)

	items, err := Build([]*types.ClassNode{root, inactiveChild, orphanedGrandchild}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := countItems(items); got != 1 {
		t.Fatalf("subtree under filtered parent must be dropped: want=1 got=%d", got)
	}
}

func TestBuildDetectsParentCycle(t *testing.T) {
	classID := uuid.New()
	a := makeNode(classID, nil, 1, true)
	b := makeNode(classID, &a.ID, 1, true)
	c := makeNode(classID, &b.ID, 1, true)
	// close the loop: b's parent becomes its own descendant
	b.ParentID = &c.ID

	_, err := Build([]*types.ClassNode{a, b, c}, true)
	if err == nil {
		t.Fatalf("Build: expected cycle error")
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("Build: want ErrCycle, got %v", err)
	}
}

func TestBuildSkipsDanglingParentReference(t *testing.T) {
	classID := uuid.New()
	root := makeNode(classID, nil, 1, true)
	missing := uuid.New()
	stray := makeNode(classID, &missing, 1, true)

	items, err := Build([]*types.ClassNode{root, stray}, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := countItems(items); got != 1 {
		t.Fatalf("dangling node must be skipped: want=1 got=%d", got)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	items, err := Build(nil, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("empty input must yield an empty, non-nil forest")
	}
}
