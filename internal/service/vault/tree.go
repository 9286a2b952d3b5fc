package vault

import (
	"slices"
	"strings"

	"promptvault/internal/domain/models/vault"
)

// BuildCollectionTree nests a flat collection list under its roots.
// Nodes whose parent is not in the list are treated as roots. Siblings are
// ordered by name.
func BuildCollectionTree(collections []vault.CollectionView) []*vault.CollectionTreeNode {
	nodes := make(map[string]*vault.CollectionTreeNode, len(collections))

	// First pass: one node per collection
	for _, c := range collections {
		nodes[c.ID] = &vault.CollectionTreeNode{
			ID:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			ParentID:      c.ParentID,
			PromptCount:   c.PromptCount,
			ChildrenCount: c.ChildrenCount,
			Children:      []*vault.CollectionTreeNode{},
		}
	}

	// Second pass: attach children to parents
	roots := make([]*vault.CollectionTreeNode, 0)
	for _, c := range collections {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	// Third pass: order siblings
	for _, node := range nodes {
		sortByName(node.Children)
	}
	sortByName(roots)

	return roots
}

func sortByName(nodes []*vault.CollectionTreeNode) {
	slices.SortStableFunc(nodes, func(a, b *vault.CollectionTreeNode) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Descendants returns the ids of every collection below id, breadth first.
// It is computed from the given snapshot and never includes id itself,
// even when the stored parent links contain a cycle.
func Descendants(collections []vault.CollectionView, id string) []string {
	children := make(map[string][]string, len(collections))
	for _, c := range collections {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	seen := map[string]bool{id: true}
	result := []string{}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if seen[child] {
				continue
			}
			seen[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}

	return result
}
