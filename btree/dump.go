// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"fmt"
	"io"
	"strings"
)

func (tree *Tree) dump(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "B-tree degree:%d len:%d height:%d nodes:%d\n",
		tree.degree, tree.size, tree.height(), tree.nodeCount())
	if nil != err {
		return
	}

	if nil == tree.root {
		return
	}

	err = dumpNode(w, tree.root, 0)
	return
}

func dumpNode(w io.Writer, n *node, depth int) (err error) {
	keysAsStrings := make([]string, len(n.keys))
	for i, key := range n.keys {
		keysAsStrings[i] = fmt.Sprintf("%v", key)
	}

	kind := "internal"
	if n.leaf {
		kind = "leaf"
	}

	_, err = fmt.Fprintf(w, "%s%s [%s]\n", strings.Repeat("  ", depth), kind, strings.Join(keysAsStrings, " "))
	if nil != err {
		return
	}

	for _, child := range n.children {
		err = dumpNode(w, child, depth+1)
		if nil != err {
			return
		}
	}

	return
}
