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

package explain

import (
	"fmt"
	"strconv"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/emicklei/dot"
)

// DOT returns a Graphviz digraph of d. Edges run from inputs to their
// consumers and are labeled with the input slot; distributed hops are
// shaded and roots drawn with a double border.
func DOT(d *hops.DAG) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("label", d.Name)
	g.Attr("rankdir", "BT")

	nodes := make(map[hops.HopID]dot.Node, d.Len())
	for _, h := range d.Hops() {
		label := fmt.Sprintf("%s #%d", h.OpString(), h.ID)
		if h.ExecType != hops.ExecTypeNone {
			label += fmt.Sprintf("\n%s %s", h.ExecType, hops.FormatMem(h.TotalMem))
		}
		n := g.Node(strconv.FormatInt(int64(h.ID), 10)).Label(label)
		n.Attr("shape", "box")
		if h.ExecType.IsDistributed() {
			n.Attr("style", "filled")
			n.Attr("fillcolor", "lightgray")
		}
		if d.IsRoot(h) {
			n.Attr("peripheries", "2")
		}
		nodes[h.ID] = n
	}
	for _, h := range d.Hops() {
		for i, id := range h.InputIDs() {
			g.Edge(nodes[id], nodes[h.ID], strconv.Itoa(i))
		}
	}
	return g.String()
}
