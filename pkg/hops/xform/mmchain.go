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

package xform

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"golang.org/x/exp/slices"
)

// OptimizeMMChains finds every maximal chain of nested matrix
// multiplications in the DAG and reorders it to minimize the number of
// scalar multiplications. It returns the number of chains whose structure
// changed.
//
// A chain is rooted at a multiply and expanded through operands that are
// themselves multiplies consumed only by the chain. Expansion stops at the
// first multiply with more than one consumer, since reordering across it
// would duplicate the shared result; that multiply becomes an operand and
// may root a chain of its own.
func OptimizeMMChains(ctx context.Context, d *hops.DAG) int {
	o := mmChainOptimizer{
		ctx:       ctx,
		d:         d,
		traversed: hops.NewVisitSet(),
		member:    hops.NewVisitSet(),
	}
	for _, root := range d.Roots() {
		o.walk(root)
	}
	return o.reordered
}

type mmChainOptimizer struct {
	ctx context.Context
	d   *hops.DAG

	// traversed marks hops the walk has already descended into; member marks
	// hops that were absorbed by a chain and may not root another one.
	traversed *hops.VisitSet
	member    *hops.VisitSet
	reordered int
}

func (o *mmChainOptimizer) walk(h *hops.Hop) {
	if o.traversed.Done(h.ID) {
		return
	}
	o.traversed.MarkDone(h.ID)
	if h.IsMatrixMultiply() && !o.member.Done(h.ID) {
		if o.optimizeChain(h) {
			o.reordered++
		}
	}
	for _, in := range o.d.Inputs(h) {
		o.walk(in)
	}
	o.member.MarkDone(h.ID)
}

// optimizeChain reorders the chain rooted at root and returns true if its
// structure changed.
func (o *mmChainOptimizer) optimizeChain(root *hops.Hop) bool {
	if root.NumInputs() != 2 {
		panic(hops.StructuralErrorf(root.Pos, "matrix multiply must have exactly two inputs, found %d",
			redact.Safe(root.NumInputs())))
	}
	operators := []*hops.Hop{root}
	chain := o.d.Inputs(root)

	// Expand the chain in place: an expandable operand at position i is
	// replaced by its two inputs.
	for i := 0; i < len(chain); {
		h := chain[i]
		expandable := false
		if h.IsMatrixMultiply() && !o.member.Done(h.ID) {
			if h.NumParents() > 1 {
				break
			}
			expandable = true
		}
		o.member.MarkDone(h.ID)
		if !expandable {
			i++
			continue
		}
		if h.NumInputs() != 2 {
			panic(hops.StructuralErrorf(h.Pos, "matrix multiply must have exactly two inputs, found %d",
				redact.Safe(h.NumInputs())))
		}
		operators = append(operators, h)
		chain[i] = o.d.Input(h, 0)
		chain = slices.Insert(chain, i+1, o.d.Input(h, 1))
	}

	if log.V(3) {
		var b strings.Builder
		for _, h := range chain {
			fmt.Fprintf(&b, " %s#%d[%dx%d]", h.Name, h.ID, h.Rows, h.Cols)
		}
		log.VEventf(o.ctx, 3, "multiply chain at hop %d:%s", redact.Safe(root.ID), b.String())
	}
	if len(chain) == 2 {
		return false
	}

	dims, known := chainDimensions(root, chain)
	if !known {
		log.VEventf(o.ctx, 2, "multiply chain at hop %d has operands of unknown size, keeping its order",
			redact.Safe(root.ID))
		return false
	}
	split, cost := MMChainDP(dims)

	before := make([][]hops.HopID, len(operators))
	for i, op := range operators {
		before[i] = append([]hops.HopID(nil), op.InputIDs()...)
	}

	// Nothing has been modified up to here, so a failure above leaves the
	// chain as it was.
	for _, op := range operators {
		o.d.DetachInputs(op)
	}
	r := relinker{d: o.d, chain: chain, operators: operators, split: split, next: 1}
	r.relink(root, 0, len(chain)-1)
	if r.next != len(operators) {
		panic(errors.AssertionFailedf("relinked %d of %d multiplies", r.next, len(operators)))
	}

	for i, op := range operators {
		if !slices.Equal(before[i], op.InputIDs()) {
			log.VEventf(o.ctx, 1, "reordered multiply chain at hop %d: %s (cost %v)",
				redact.Safe(root.ID), redact.Safe(FormatChainOrder(split, 0, len(chain)-1)), redact.Safe(cost))
			return true
		}
	}
	return false
}

// chainDimensions builds the dimension vector of a chain: dims[i] is the
// row count of operand i and dims[n] the column count of the last operand.
// It returns false if any operand has unknown dimensions, in which case the
// vector is all ones. Adjacent operands that do not conform are a
// structural error.
func chainDimensions(root *hops.Hop, chain []*hops.Hop) ([]int64, bool) {
	dims := make([]int64, len(chain)+1)
	for _, h := range chain {
		if h.Rows <= 0 || h.Cols <= 0 {
			for i := range dims {
				dims[i] = 1
			}
			return dims, false
		}
	}
	dims[0] = chain[0].Rows
	for i, h := range chain {
		if i > 0 && chain[i-1].Cols != h.Rows {
			panic(hops.StructuralErrorf(root.Pos,
				"matrix dimension mismatch in multiply chain: operand %d is %dx%d, operand %d is %dx%d",
				redact.Safe(i-1), redact.Safe(chain[i-1].Rows), redact.Safe(chain[i-1].Cols),
				redact.Safe(i), redact.Safe(h.Rows), redact.Safe(h.Cols)))
		}
		dims[i+1] = h.Cols
	}
	return dims, true
}

// MMChainDP computes the optimal parenthesization of a chain of n matrices
// whose dimensions are given by dims (length n+1): matrix i is
// dims[i] x dims[i+1]. split[i][j] is the position k at which the product
// of matrices i..j is split into (i..k)(k+1..j). It also returns the
// minimal number of scalar multiplications.
func MMChainDP(dims []int64) (split [][]int, cost float64) {
	n := len(dims) - 1
	if n < 1 {
		return nil, 0
	}
	costs := make([][]float64, n)
	split = make([][]int, n)
	for i := range costs {
		costs[i] = make([]float64, n)
		split[i] = make([]int, n)
		for j := range split[i] {
			split[i][j] = -1
		}
	}
	for l := 2; l <= n; l++ {
		for i := 0; i < n-l+1; i++ {
			j := i + l - 1
			costs[i][j] = math.Inf(1)
			for k := i; k < j; k++ {
				c := costs[i][k] + costs[k+1][j] +
					float64(dims[i])*float64(dims[k+1])*float64(dims[j+1])
				// Strictly less: among equal costs the leftmost split wins.
				if c < costs[i][j] {
					costs[i][j] = c
					split[i][j] = k
				}
			}
		}
	}
	return split, costs[0][n-1]
}

// FormatChainOrder renders the parenthesization of matrices i..j encoded in
// split, naming matrix k "Mk".
func FormatChainOrder(split [][]int, i, j int) string {
	if i == j {
		return fmt.Sprintf("M%d", i)
	}
	k := split[i][j]
	return "(" + FormatChainOrder(split, i, k) + " " + FormatChainOrder(split, k+1, j) + ")"
}

// relinker rebuilds a multiply tree from a split table, reusing the chain's
// multiply hops in order. next is shared by the whole recursion so that
// every multiply is used exactly once.
type relinker struct {
	d         *hops.DAG
	chain     []*hops.Hop
	operators []*hops.Hop
	split     [][]int
	next      int
}

func (r *relinker) relink(h *hops.Hop, i, j int) {
	k := r.split[i][j]
	var left, right *hops.Hop
	if k == i {
		left = r.chain[i]
	} else {
		left = r.operators[r.next]
		r.next++
	}
	if k+1 == j {
		right = r.chain[j]
	} else {
		right = r.operators[r.next]
		r.next++
	}
	r.d.AddInput(h, left)
	r.d.AddInput(h, right)

	if k != i {
		r.relink(left, i, k)
	}
	if k+1 != j {
		r.relink(right, k+1, j)
	}

	h.Rows, h.RowsInBlock = left.Rows, left.RowsInBlock
	h.Cols, h.ColsInBlock = right.Cols, right.ColsInBlock
	if h != r.operators[0] {
		h.NNZ = -1
	}
}
