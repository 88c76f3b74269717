package tree

import "github.com/questforge/questforge-backend/internal/types"

// Lock predicates. Import-locked nodes reject structural mutation; the lock
// applies to the node itself and to direct structural changes beneath it,
// and does not cascade into descendants' own flags.

func CanMutate(node *types.ClassNode) bool {
	return node != nil && !node.IsLockedByImport
}

// CanAddChildUnder permits the root level (nil parent); parent existence is
// the caller's concern and is checked before the lock.
func CanAddChildUnder(parent *types.ClassNode) bool {
	return parent == nil || !parent.IsLockedByImport
}

func CanReorderUnder(parent *types.ClassNode) bool {
	return CanAddChildUnder(parent)
}
