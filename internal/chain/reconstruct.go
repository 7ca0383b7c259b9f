package chain

import (
	"fmt"
	"strings"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Chain is the reconstructed order of one scope.
type Chain struct {
	// Items runs from head to tail.
	Items []*models.BacklogItem
	// Orphans are items of the scope that cannot be reached from the head.
	Orphans []*models.BacklogItem
}

// Reconstruct walks prev pointers to order an unordered set of items of a
// single scope. It fails with models.ErrChainCorrupted when two items claim
// the same predecessor or when more than one item is a head. Items that are
// not reachable from the head are reported in Orphans instead of failing; a
// set with no head at all yields an empty Items slice and every item as an
// orphan.
//
// Reconstruct keeps no state between calls and does not modify its input.
func Reconstruct(items []*models.BacklogItem) (*Chain, error) {
	successors := make(map[string]*models.BacklogItem, len(items))
	var head *models.BacklogItem

	for _, item := range items {
		if item.PrevItemID == nil {
			if head != nil {
				return nil, fmt.Errorf("%w: items %s and %s are both heads", models.ErrChainCorrupted, head.ID, item.ID)
			}
			head = item
			continue
		}
		if other, ok := successors[*item.PrevItemID]; ok {
			return nil, fmt.Errorf("%w: items %s and %s both follow %s",
				models.ErrChainCorrupted, other.ID, item.ID, *item.PrevItemID)
		}
		successors[*item.PrevItemID] = item
	}

	c := &Chain{Items: make([]*models.BacklogItem, 0, len(items))}
	visited := make(map[string]bool, len(items))

	for current := head; current != nil && !visited[current.ID]; current = successors[current.ID] {
		visited[current.ID] = true
		c.Items = append(c.Items, current)
	}

	if len(c.Items) < len(items) {
		for _, item := range items {
			if !visited[item.ID] {
				c.Orphans = append(c.Orphans, item)
			}
		}
	}

	return c, nil
}

// Verify returns models.ErrChainCorrupted when some items are unreachable.
func (c *Chain) Verify() error {
	if len(c.Orphans) == 0 {
		return nil
	}
	ids := make([]string, len(c.Orphans))
	for i, o := range c.Orphans {
		ids[i] = o.ID
	}
	return fmt.Errorf("%w: %d item(s) unreachable from head: %s",
		models.ErrChainCorrupted, len(ids), strings.Join(ids, ", "))
}

// Len is the number of reachable items.
func (c *Chain) Len() int {
	return len(c.Items)
}

// Head returns the first item, or nil for an empty chain.
func (c *Chain) Head() *models.BacklogItem {
	if len(c.Items) == 0 {
		return nil
	}
	return c.Items[0]
}

// Tail returns the last item, or nil for an empty chain.
func (c *Chain) Tail() *models.BacklogItem {
	if len(c.Items) == 0 {
		return nil
	}
	return c.Items[len(c.Items)-1]
}

// IndexOf returns the zero-based position of id, or -1.
func (c *Chain) IndexOf(id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// IDs lists item ids from head to tail.
func (c *Chain) IDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ID
	}
	return ids
}

// Without returns the ordered items minus the one with the given id.
func (c *Chain) Without(id string) []*models.BacklogItem {
	out := make([]*models.BacklogItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}
