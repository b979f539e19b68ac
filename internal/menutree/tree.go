// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menutree rebuilds ordered parent/child forests from flat records.
//
// Menu items are stored as flat rows carrying a parent reference and a sort
// order. Build turns one menu's rows into a forest that renderers can walk,
// and NextSortOrder picks the position for an appended sibling.
package menutree

import (
	"cmp"
	"slices"
)

// Entry is a flat record that can be placed in a tree.
type Entry[K comparable] interface {
	// TreeKey returns the record's own identifier.
	TreeKey() K
	// TreeParent returns the parent identifier, or false for a root record.
	TreeParent() (K, bool)
	// TreeOrder returns the position among siblings.
	TreeOrder() int
}

// Node is a record together with its ordered children.
type Node[T any] struct {
	Item     T         `json:"item"`
	Children []Node[T] `json:"children"`
}

// Build reconstructs the forest described by items.
//
// Roots are records without a parent, records whose parent is not part of
// items, and records that name themselves as parent. Roots and every child
// list are ordered by TreeOrder; equal orders keep their input order.
//
// Build never fails. A record that shows up again on its own ancestor path
// is emitted as a leaf. Records that cannot be reached from any root because
// their parent chain loops are appended as extra roots, so every record is
// returned at least once.
func Build[K comparable, T Entry[K]](items []T) []Node[T] {
	if len(items) == 0 {
		return []Node[T]{}
	}

	present := make(map[K]struct{}, len(items))
	for _, item := range items {
		present[item.TreeKey()] = struct{}{}
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return cmp.Compare(a.TreeOrder(), b.TreeOrder())
	})

	// Child lists inherit the stable order of sorted.
	children := make(map[K][]T, len(items))
	roots := make([]T, 0, len(items))
	for _, item := range sorted {
		parent, ok := item.TreeParent()
		if ok && parent != item.TreeKey() {
			if _, exists := present[parent]; exists {
				children[parent] = append(children[parent], item)
				continue
			}
		}
		roots = append(roots, item)
	}

	b := &builder[K, T]{
		children: children,
		emitted:  make(map[K]bool, len(items)),
		path:     make(map[K]bool),
	}

	forest := make([]Node[T], 0, len(roots))
	for _, root := range roots {
		forest = append(forest, b.node(root))
	}

	for _, item := range sorted {
		if !b.emitted[item.TreeKey()] {
			forest = append(forest, b.node(item))
		}
	}

	return forest
}

type builder[K comparable, T Entry[K]] struct {
	children map[K][]T
	emitted  map[K]bool
	path     map[K]bool
}

func (b *builder[K, T]) node(item T) Node[T] {
	key := item.TreeKey()
	n := Node[T]{Item: item, Children: []Node[T]{}}

	if b.path[key] {
		return n
	}
	b.emitted[key] = true

	kids := b.children[key]
	if len(kids) == 0 {
		return n
	}

	b.path[key] = true
	defer delete(b.path, key)

	n.Children = make([]Node[T], 0, len(kids))
	for _, kid := range kids {
		n.Children = append(n.Children, b.node(kid))
	}
	return n
}

// NextSortOrder returns the order for a record appended after siblings:
// one past the largest existing order, or 0 when there are no siblings.
// Gaps between existing orders are left alone.
func NextSortOrder[K comparable, T Entry[K]](siblings []T) int {
	orders := make([]int, len(siblings))
	for i, s := range siblings {
		orders[i] = s.TreeOrder()
	}
	return NextOrder(orders...)
}

// NextOrder is NextSortOrder over bare order values.
func NextOrder(orders ...int) int {
	if len(orders) == 0 {
		return 0
	}
	return slices.Max(orders) + 1
}

// Flatten returns the records of a forest in depth-first order.
func Flatten[T any](forest []Node[T]) []T {
	var out []T
	var walk func(nodes []Node[T])
	walk = func(nodes []Node[T]) {
		for _, n := range nodes {
			out = append(out, n.Item)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}

// Count returns the number of nodes in a forest.
func Count[T any](forest []Node[T]) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.Children)
	}
	return total
}

// Prune returns a copy of forest cut below maxDepth levels.
// A maxDepth of zero or less keeps the whole forest.
func Prune[T any](forest []Node[T], maxDepth int) []Node[T] {
	if maxDepth <= 0 {
		return forest
	}
	out := make([]Node[T], 0, len(forest))
	for _, n := range forest {
		kids := []Node[T]{}
		if maxDepth > 1 {
			kids = Prune(n.Children, maxDepth-1)
		}
		out = append(out, Node[T]{Item: n.Item, Children: kids})
	}
	return out
}
