// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"strings"

	"github.com/NVIDIA/btreeindex/blunder"
)

// cursorFrame is one level of a Cursor's path from the root. A node with n
// keys is visited in 2n+1 steps: n key steps and n+1 child steps, interleaved
// according to the Cursor's Order.
type cursorFrame struct {
	node *node
	step int
}

func parseOrder(orderAsString string) (order Order, err error) {
	switch strings.ToLower(orderAsString) {
	case "pre", "preorder":
		order = PreOrder
	case "in", "inorder":
		order = InOrder
	case "post", "postorder":
		order = PostOrder
	default:
		err = blunder.NewError(blunder.InvalidOrderError, "unknown traversal order %q", orderAsString)
		return
	}

	err = nil
	return
}

func (tree *Tree) traverse(order Order) (cursor *Cursor, err error) {
	switch order {
	case PreOrder, InOrder, PostOrder:
	default:
		err = blunder.NewError(blunder.InvalidOrderError, "unknown traversal order %d", int(order))
		return
	}

	cursor = &Cursor{
		tree:  tree,
		order: order,
	}
	cursor.reset()

	err = nil
	return
}

func (cursor *Cursor) reset() {
	cursor.generation = cursor.tree.generation
	cursor.stack = cursor.stack[:0]
	if nil != cursor.tree.root {
		cursor.stack = append(cursor.stack, cursorFrame{node: cursor.tree.root})
	}
}

// visit maps step of a node holding keyCount keys to either a key index or a
// child index (the other is -1).
func (order Order) visit(step int, keyCount int) (keyIndex int, childIndex int) {
	keyIndex = -1
	childIndex = -1

	switch order {
	case PreOrder:
		if step < keyCount {
			keyIndex = step
		} else {
			childIndex = step - keyCount
		}
	case InOrder:
		if 0 == step%2 {
			childIndex = step / 2
		} else {
			keyIndex = step / 2
		}
	case PostOrder:
		// child 0, then child i+1 followed by key i
		switch {
		case 0 == step:
			childIndex = 0
		case 1 == step%2:
			childIndex = (step + 1) / 2
		default:
			keyIndex = step/2 - 1
		}
	}

	return
}

func (cursor *Cursor) next() (key Key, ok bool) {
	if cursor.generation != cursor.tree.generation {
		cursor.stack = cursor.stack[:0]
		return
	}

	for 0 < len(cursor.stack) {
		top := &cursor.stack[len(cursor.stack)-1]
		n := top.node
		step := top.step

		if step > 2*len(n.keys) {
			cursor.stack = cursor.stack[:len(cursor.stack)-1]
			continue
		}

		top.step++

		keyIndex, childIndex := cursor.order.visit(step, len(n.keys))
		if 0 <= keyIndex {
			key = n.keys[keyIndex]
			ok = true
			return
		}
		if !n.leaf {
			cursor.stack = append(cursor.stack, cursorFrame{node: n.children[childIndex]})
		}
	}

	return
}
