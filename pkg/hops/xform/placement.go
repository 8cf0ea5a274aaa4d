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

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/aloknsingh/systemml/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// distributedExecType returns the distributed engine of the platform.
func distributedExecType(mode base.ExecMode) hops.ExecType {
	if mode.IsSpark() {
		return hops.ExecTypeDistributedSpark
	}
	return hops.ExecTypeDistributed
}

// ForcedExecType returns the placement a hop must take regardless of its
// memory estimate, or ExecTypeNone if the choice is left to the budget.
// A single-engine platform forces its engine on every hop; on a hybrid
// platform, operators restricted to one engine are forced onto it.
func ForcedExecType(h *hops.Hop, mode base.ExecMode) hops.ExecType {
	switch mode {
	case base.ExecModeSingleNode:
		return hops.ExecTypeLocal
	case base.ExecModeHadoop:
		return hops.ExecTypeDistributed
	case base.ExecModeSpark:
		return hops.ExecTypeDistributedSpark
	}
	if !h.Op.AllowsAllExecTypes() {
		et := h.Op.IntrinsicExecType()
		if et.IsDistributed() {
			return distributedExecType(mode)
		}
		return et
	}
	return hops.ExecTypeNone
}

// SelectExecType returns the forced placement of the hop if it has one.
// Otherwise the hop runs locally if its total memory estimate is strictly
// below the budget, and on the distributed engine if it is at or above it.
func SelectExecType(h *hops.Hop, budget float64, distributed hops.ExecType) hops.ExecType {
	if h.ForcedExecType != hops.ExecTypeNone {
		return h.ForcedExecType
	}
	if !h.HasValidMemEstimate() {
		panic(errors.AssertionFailedf("placing hop %d without a memory estimate", h.ID))
	}
	if h.TotalMem < budget {
		return hops.ExecTypeLocal
	}
	return distributed
}

// PlaceDAG assigns a placement to every hop of the DAG and returns the
// number of hops per placement. A placement forced by the operator or the
// platform replaces one forced by the caller.
func PlaceDAG(ctx context.Context, d *hops.DAG, cfg *base.OptimizerConfig) map[hops.ExecType]int {
	budget := cfg.MemBudget()
	distributed := distributedExecType(cfg.ExecMode)
	counts := make(map[hops.ExecType]int)
	for _, h := range d.Hops() {
		if f := ForcedExecType(h, cfg.ExecMode); f != hops.ExecTypeNone {
			h.ForcedExecType = f
		}
		h.ExecType = SelectExecType(h, budget, distributed)
		counts[h.ExecType]++
		if log.V(2) {
			marker := ' '
			if h.ExecType.IsDistributed() {
				marker = '*'
			}
			log.VEventf(ctx, 2, "  %c %-5d %-8s (%s,%s)  %s", marker, redact.Safe(h.ID),
				redact.Safe(h.OpString()), redact.Safe(humanizeutil.IBytesFloat(h.OutputMem)),
				redact.Safe(humanizeutil.IBytesFloat(h.TotalMem)), redact.Safe(h.ExecType))
		}
	}
	return counts
}
