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

// Package xform contains the cost-based parts of the optimizer and the
// pipeline that runs all passes over a DAG: execution placement against a
// memory budget and matrix multiplication chain reordering.
package xform

import (
	"context"
	"time"

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/memo"
	"github.com/aloknsingh/systemml/pkg/hops/norm"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/aloknsingh/systemml/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result summarizes the changes made to one DAG.
type Result struct {
	Block string

	// PersistentRewritten counts reads and writes turned transient.
	PersistentRewritten int
	// Eliminated counts hops removed by common subexpression elimination.
	Eliminated int
	// ReblocksInserted counts reblock hops added.
	ReblocksInserted int
	// ChainsReordered counts multiply chains whose order changed.
	ChainsReordered int
	// ExecTypes counts hops per placement.
	ExecTypes map[hops.ExecType]int
	// Gaps lists the hops whose output size is not statically known.
	Gaps []hops.EstimationGap
}

// Optimizer runs the optimization passes over hop DAGs. It holds no
// per-DAG state and may optimize distinct DAGs concurrently.
type Optimizer struct {
	cfg     base.OptimizerConfig
	metrics *Metrics
}

// NewOptimizer returns an optimizer for the given configuration. metrics may
// be nil.
func NewOptimizer(cfg base.OptimizerConfig, metrics *Metrics) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, metrics: metrics}, nil
}

// Config returns the optimizer configuration.
func (o *Optimizer) Config() *base.OptimizerConfig { return &o.cfg }

// Optimize rewrites and annotates the DAG in place:
//
//  0. the DAG is checked for inconsistent edges and cycles;
//  1. persistent reads and writes bound in memory become transient;
//  2. common subexpressions are eliminated, to a fixed point;
//  3. block sizes are assigned and reblocks inserted;
//  4. memory estimates are computed bottom-up;
//  5. every hop is placed locally or distributed;
//  6. multiply chains are reordered, after which estimates and placements
//     are recomputed if anything changed.
//
// A structural error or a failed check aborts optimization; the DAG must then be discarded.
func (o *Optimizer) Optimize(ctx context.Context, d *hops.DAG) (res Result, err error) {
	ctx = logtags.AddTag(ctx, "block", d.Name)
	start := time.Now()
	defer func() {
		if err != nil {
			o.metrics.recordFailure()
			log.Warningf(ctx, "optimization failed: %v", err)
		}
	}()
	defer hops.CatchOptimizerError(&err)

	res = o.optimize(ctx, d)
	elapsed := time.Since(start)
	o.metrics.record(&res, elapsed.Seconds())
	log.VEventf(ctx, 1, "optimized %d hops in %s: %d eliminated, %d reblocks, %d chains reordered, %d estimation gaps",
		redact.Safe(d.Len()), redact.Safe(humanizeutil.Duration(elapsed)), redact.Safe(res.Eliminated),
		redact.Safe(res.ReblocksInserted), redact.Safe(res.ChainsReordered), redact.Safe(len(res.Gaps)))
	return res, nil
}

func (o *Optimizer) optimize(ctx context.Context, d *hops.DAG) Result {
	cfg := &o.cfg
	res := Result{Block: d.Name}

	// The passes assume a well-formed DAG; a cycle would never terminate.
	hops.CheckDAG(d)

	rw := &cfg.Rewrites
	res.PersistentRewritten = norm.RemovePersistentReadWrite(d, rw.TransientInputs, rw.TransientOutputs)

	if rw.CSE {
		for i := 0; i < base.MaxCSEIterations; i++ {
			n := norm.EliminateCommonSubexpressions(d)
			log.VEventf(ctx, 2, "cse round %d eliminated %d hops", redact.Safe(i+1), redact.Safe(n))
			res.Eliminated += n
			if n == 0 {
				break
			}
		}
	}

	res.ReblocksInserted = norm.AssignBlockSizes(d, cfg.ExecMode, cfg.BlockSize)

	est := memo.NewEstimator(cfg.EffectiveDefaultSize())
	res.Gaps = est.EstimateDAG(d)
	res.ExecTypes = PlaceDAG(ctx, d, cfg)

	if rw.MMChain {
		res.ChainsReordered = OptimizeMMChains(ctx, d)
		if res.ChainsReordered > 0 {
			d.ResetMemEstimates()
			res.Gaps = est.EstimateDAG(d)
			res.ExecTypes = PlaceDAG(ctx, d, cfg)
		}
	}

	hops.CheckDAG(d)
	if !hops.CheckEstimates(d) {
		panic(errors.AssertionFailedf("DAG %s has hops without memory estimates", redact.Safe(d.Name)))
	}
	return res
}

// OptimizeProgram optimizes the statement blocks of a program concurrently,
// at most Parallelism at a time. Each block is optimized by a single
// goroutine. The first failure cancels the blocks not yet started.
func (o *Optimizer) OptimizeProgram(ctx context.Context, p *hops.Program) ([]Result, error) {
	ctx = logtags.AddTag(ctx, "plan", uuid.NewString()[:8])
	results := make([]Result, len(p.Blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Parallelism)
	for i, d := range p.Blocks {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := o.Optimize(gctx, d)
			if err != nil {
				return errors.Wrapf(err, "optimizing block %s", d.Name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.VEventf(ctx, 1, "optimized %d blocks", redact.Safe(len(p.Blocks)))
	return results, nil
}
