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

package memo

import (
	"strings"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Estimator computes the output, processing and total memory estimates of
// hops.
type Estimator struct {
	defaultSize float64
	gaps        []hops.EstimationGap
}

// NewEstimator returns an estimator that assumes defaultSize bytes for
// outputs whose size can be neither derived nor bounded. defaultSize must
// be positive.
func NewEstimator(defaultSize float64) *Estimator {
	if defaultSize <= 0 {
		panic(errors.AssertionFailedf("default size must be positive, got %v", redact.Safe(defaultSize)))
	}
	return &Estimator{defaultSize: defaultSize}
}

// EstimateDAG recomputes the memory estimates of every hop in the DAG,
// inputs before consumers, starting from the roots. It returns the hops
// whose output size is not statically known; those hops are estimated with
// worst-case or default sizes and marked for recompilation.
func (e *Estimator) EstimateDAG(d *hops.DAG) []hops.EstimationGap {
	e.gaps = e.gaps[:0]
	memo := NewMemoTable()
	visit := hops.NewVisitSet()
	for _, root := range d.Roots() {
		e.estimate(d, memo, visit, root)
	}
	// Hops not reachable from a root (such as unused reads) are still
	// annotated.
	for _, h := range d.Hops() {
		e.estimate(d, memo, visit, h)
	}
	return append([]hops.EstimationGap(nil), e.gaps...)
}

func (e *Estimator) estimate(d *hops.DAG, memo *MemoTable, visit *hops.VisitSet, h *hops.Hop) {
	if visit.Done(h.ID) {
		return
	}
	visit.Enter(h.ID)
	for _, in := range d.Inputs(h) {
		e.estimate(d, memo, visit, in)
	}
	e.ComputeMemEstimate(d, memo, h)
	visit.MarkDone(h.ID)
}

// ComputeMemEstimate computes the estimates of a single hop. The estimates
// of its inputs must already be valid.
func (e *Estimator) ComputeMemEstimate(d *hops.DAG, memo *MemoTable, h *hops.Hop) {
	var wstats hops.Characteristics
	haveWorstCase := false

	switch h.DataType {
	case hops.DataTypeScalar:
		if h.Op == hops.LiteralOp || h.Op == hops.DataOp {
			h.OutputMem = hops.OutputMemEstimate(h, h.Characteristics())
		} else {
			h.OutputMem = hops.ScalarSize(h.ValueType)
		}

	case hops.DataTypeMatrix:
		h.RequiresRecompile = !h.DimsKnown()
		if h.DimsKnown() {
			h.OutputMem = hops.OutputMemEstimate(h, dense(h.Characteristics()))
			break
		}
		inputs, stats, ok := memo.InputStatistics(d, h)
		if ok {
			wstats, haveWorstCase = hops.InferOutputCharacteristics(h, inputs, stats)
		}
		if haveWorstCase {
			h.OutputMem = hops.OutputMemEstimate(h, dense(wstats))
			memo.MemoizeStatistics(h.ID, wstats)
			e.addGap(h, "worst-case size "+wstats.String()+" inferred from inputs")
		} else {
			h.OutputMem = e.defaultSize
			e.addGap(h, "output size unknown")
		}

	default:
		h.OutputMem = e.defaultSize
	}

	switch {
	case h.DimsKnown():
		h.ProcessingMem = hops.IntermediateMemEstimate(h, dense(h.Characteristics()))
	case haveWorstCase:
		h.ProcessingMem = hops.IntermediateMemEstimate(h, dense(wstats))
	default:
		h.ProcessingMem = 0
	}

	total := h.OutputMem + h.ProcessingMem
	for _, in := range d.Inputs(h) {
		if in.OutputMem == hops.InvalidSize {
			panic(errors.AssertionFailedf("input %d of hop %d has no memory estimate", in.ID, h.ID))
		}
		total += in.OutputMem
	}
	h.TotalMem = total
}

func (e *Estimator) addGap(h *hops.Hop, reason string) {
	// Data ops print their name as part of the operator.
	op := strings.TrimSuffix(h.OpString(), " "+h.Name)
	e.gaps = append(e.gaps, hops.EstimationGap{
		ID:     h.ID,
		Op:     op,
		Name:   h.Name,
		Pos:    h.Pos,
		Reason: reason,
	})
}

// dense fills in an unknown non-zero count with rows*cols.
func dense(c hops.Characteristics) hops.Characteristics {
	c.NNZ = c.NNZOrDense()
	return c
}
