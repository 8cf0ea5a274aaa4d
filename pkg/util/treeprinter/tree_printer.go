// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package treeprinter renders hierarchical output such as:
//
//	root
//	 ├── child1
//	 │    └── grandchild
//	 └── child2
package treeprinter

import (
	"fmt"
	"strings"
)

const (
	edgeLink = "│"
	edgeMid  = "├── "
	edgeLast = "└── "
)

type node struct {
	text     string
	children []*node
}

// Node is a handle associated with a specific tree node, used to add
// children.
type Node struct {
	n *node
}

// New creates a tree printer and returns a sentinel node reference which
// should be used to add the root. Only one root may be added.
func New() Node {
	return Node{n: &node{}}
}

// Child adds a node as a child of the given node.
func (n Node) Child(text string) Node {
	c := &node{text: text}
	n.n.children = append(n.n.children, c)
	return Node{n: c}
}

// Childf adds a node as a child of the given node.
func (n Node) Childf(format string, args ...interface{}) Node {
	return n.Child(fmt.Sprintf(format, args...))
}

// AddLine adds a new line to the text of the node; the new line is printed
// underneath, aligned with the node text.
func (n Node) AddLine(text string) {
	n.n.text += "\n" + text
}

// String returns the tree as a string. It must be called on the sentinel
// returned by New.
func (n Node) String() string {
	var buf strings.Builder
	for _, root := range n.n.children {
		format(&buf, root, "", "")
	}
	return buf.String()
}

func format(buf *strings.Builder, n *node, firstPrefix, restPrefix string) {
	lines := strings.Split(n.text, "\n")
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(firstPrefix)
		} else {
			buf.WriteString(restPrefix)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	for i, c := range n.children {
		if i == len(n.children)-1 {
			format(buf, c, restPrefix+" "+edgeLast, restPrefix+"     ")
		} else {
			format(buf, c, restPrefix+" "+edgeMid, restPrefix+" "+edgeLink+"   ")
		}
	}
}
