package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/types"
)

// ErrCycle reports a parent reference chain that loops back on itself.
var ErrCycle = errors.New("class node graph contains a parent cycle")

// Build reconstructs the nested outline from a flat row set belonging to one
// class. Children lists are sorted by sequence and never nil. The descent is
// iterative over a prebuilt adjacency map, so a malformed graph cannot
// recurse unboundedly: a parent cycle returns ErrCycle, while nodes whose
// parent id is missing from the row set are dropped along with their
// descendants.
func Build(nodes []*types.ClassNode, onlyActive bool) ([]*types.TreeItem, error) {
	filtered := make([]*types.ClassNode, 0, len(nodes))
	for _, node := range nodes {
		if onlyActive && !node.IsActive {
			continue
		}
		filtered = append(filtered, node)
	}

	byID := make(map[uuid.UUID]*types.ClassNode, len(filtered))
	children := make(map[uuid.UUID][]*types.ClassNode)
	var roots []*types.ClassNode
	for _, node := range filtered {
		byID[node.ID] = node
	}
	for _, node := range filtered {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		children[*node.ParentID] = append(children[*node.ParentID], node)
	}
	sortBySequence(roots)
	for _, group := range children {
		sortBySequence(group)
	}

	items := make(map[uuid.UUID]*types.TreeItem, len(filtered))
	visited := make(map[uuid.UUID]bool, len(filtered))
	result := make([]*types.TreeItem, 0, len(roots))

	stack := make([]*types.ClassNode, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true
		item := &types.TreeItem{Node: node, Children: []*types.TreeItem{}}
		items[node.ID] = item
		if node.ParentID == nil {
			result = append(result, item)
		} else if parent, ok := items[*node.ParentID]; ok {
			parent.Children = append(parent.Children, item)
		}
		group := children[node.ID]
		for i := len(group) - 1; i >= 0; i-- {
			stack = append(stack, group[i])
		}
	}

	if len(visited) != len(filtered) {
		for _, node := range filtered {
			if visited[node.ID] {
				continue
			}
			if cyclic(node, byID) {
				return nil, fmt.Errorf("node %s: %w", node.ID, ErrCycle)
			}
			// parent chain dangles outside the row set: orphan, skipped
		}
	}
	return result, nil
}

// cyclic walks the parent chain of an unreached node. The chain either
// escapes the row set (orphan) or loops (cycle); it cannot reach a visited
// node, or the node itself would have been visited.
func cyclic(node *types.ClassNode, byID map[uuid.UUID]*types.ClassNode) bool {
	seen := map[uuid.UUID]bool{node.ID: true}
	current := node
	for current.ParentID != nil {
		parent, ok := byID[*current.ParentID]
		if !ok {
			return false
		}
		if seen[parent.ID] {
			return true
		}
		seen[parent.ID] = true
		current = parent
	}
	return false
}

func sortBySequence(nodes []*types.ClassNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Sequence < nodes[j].Sequence
	})
}
