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

package hops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aloknsingh/systemml/pkg/util/treeprinter"
)

// FmtFlags controls which hop properties FormatDAG prints.
type FmtFlags int

const (
	// FmtShowAll shows all properties.
	FmtShowAll FmtFlags = 0

	// FmtHideMem hides memory estimates.
	FmtHideMem FmtFlags = 1 << (iota - 1)

	// FmtHideExec hides the placement.
	FmtHideExec

	// FmtHideBlocks hides block sizes.
	FmtHideBlocks

	// FmtHideSizes hides dimensions and non-zeros.
	FmtHideSizes
)

// HasFlags tests whether the given flags are all set.
func (f FmtFlags) HasFlags(subset FmtFlags) bool {
	return f&subset == subset
}

// FormatDAG returns a tree rendering of the DAG, one tree per root. A hop
// reachable along several paths is printed in full the first time and as a
// reference to its id afterwards.
func FormatDAG(d *DAG, flags FmtFlags) string {
	tp := treeprinter.New()
	seen := NewVisitSet()
	for _, root := range d.Roots() {
		formatHop(d, root, tp, flags, seen)
	}
	return tp.String()
}

func formatHop(d *DAG, h *Hop, tp treeprinter.Node, flags FmtFlags, seen *VisitSet) {
	if seen.Done(h.ID) {
		tp.Childf("=> #%d", h.ID)
		return
	}
	seen.MarkDone(h.ID)
	child := tp.Child(FormatHop(h, flags))
	for _, in := range d.Inputs(h) {
		formatHop(d, in, child, flags, seen)
	}
}

// FormatHop returns a one-line description of the hop.
func FormatHop(h *Hop, flags FmtFlags) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d", h.OpString(), h.ID)
	if h.IsScalar() {
		fmt.Fprintf(&b, " %s", h.ValueType)
	} else if !flags.HasFlags(FmtHideSizes) {
		fmt.Fprintf(&b, " %s", h.Characteristics())
	}
	if !flags.HasFlags(FmtHideBlocks) && !h.IsScalar() {
		fmt.Fprintf(&b, " blk=[%d,%d]", h.RowsInBlock, h.ColsInBlock)
	}
	if !flags.HasFlags(FmtHideMem) {
		fmt.Fprintf(&b, " mem=[%s,%s,%s]",
			FormatMem(h.OutputMem), FormatMem(h.ProcessingMem), FormatMem(h.TotalMem))
	}
	if !flags.HasFlags(FmtHideExec) && h.ExecType != ExecTypeNone {
		fmt.Fprintf(&b, " %s", h.ExecType)
	}
	if h.RequiresRecompile {
		b.WriteString(" recompile")
	}
	return b.String()
}

// FormatMem formats a memory estimate in bytes; estimates that have not
// been computed print as "?".
func FormatMem(v float64) string {
	if v == InvalidSize {
		return "?"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
