package tree

import (
	"testing"

	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/types"
)

func TestCanMutate(t *testing.T) {
	if CanMutate(nil) {
		t.Fatalf("nil node must not be mutable")
	}
	if !CanMutate(&types.ClassNode{ID: uuid.New()}) {
		t.Fatalf("unlocked node must be mutable")
	}
	if CanMutate(&types.ClassNode{ID: uuid.New(), IsLockedByImport: true}) {
		t.Fatalf("locked node must not be mutable")
	}
}

func TestCanAddChildUnder(t *testing.T) {
	if !CanAddChildUnder(nil) {
		t.Fatalf("root level must always accept children")
	}
	if !CanAddChildUnder(&types.ClassNode{ID: uuid.New()}) {
		t.Fatalf("unlocked parent must accept children")
	}
	if CanAddChildUnder(&types.ClassNode{ID: uuid.New(), IsLockedByImport: true}) {
		t.Fatalf("locked parent must reject children")
	}
}

func TestCanReorderUnder(t *testing.T) {
	if !CanReorderUnder(nil) {
		t.Fatalf("root level reorder must always be permitted")
	}
	if CanReorderUnder(&types.ClassNode{ID: uuid.New(), IsLockedByImport: true}) {
		t.Fatalf("reorder under a locked parent must be rejected")
	}
}

// A locked parent blocks structural changes beneath it, but the lock does not
// flow into the child's own flag: the child stays individually mutable.
func TestLockDoesNotCascadeToDescendants(t *testing.T) {
	parent := &types.ClassNode{ID: uuid.New(), IsLockedByImport: true}
	child := &types.ClassNode{ID: uuid.New(), ParentID: &parent.ID}

	if CanAddChildUnder(parent) {
		t.Fatalf("locked parent must reject new children")
	}
	if !CanMutate(child) {
		t.Fatalf("child of a locked parent must remain mutable itself")
	}
	if !CanAddChildUnder(child) {
		t.Fatalf("child of a locked parent must still accept its own children")
	}
}
