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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by the optimizer.
type Metrics struct {
	Runs             prometheus.Counter
	Failures         prometheus.Counter
	CSEEliminated    prometheus.Counter
	ReblocksInserted prometheus.Counter
	ChainsReordered  prometheus.Counter
	EstimationGaps   prometheus.Counter
	ExecTypes        *prometheus.CounterVec
	Duration         prometheus.Histogram
}

// NewMetrics creates the optimizer metrics and registers them with reg. A
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_optimizer_runs_total",
			Help: "Number of statement blocks optimized.",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_optimizer_failures_total",
			Help: "Number of statement blocks whose optimization failed.",
		}),
		CSEEliminated: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_cse_eliminated_total",
			Help: "Number of hops removed by common subexpression elimination.",
		}),
		ReblocksInserted: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_reblocks_inserted_total",
			Help: "Number of reblock hops inserted.",
		}),
		ChainsReordered: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_mmchains_reordered_total",
			Help: "Number of matrix multiplication chains reordered.",
		}),
		EstimationGaps: f.NewCounter(prometheus.CounterOpts{
			Name: "hops_estimation_gaps_total",
			Help: "Number of hops whose output size was not statically known.",
		}),
		ExecTypes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hops_exec_type_total",
			Help: "Number of hops placed on each engine.",
		}, []string{"exec_type"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hops_optimizer_duration_seconds",
			Help:    "Time spent optimizing a statement block.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
}

func (m *Metrics) record(res *Result, seconds float64) {
	if m == nil {
		return
	}
	m.Runs.Inc()
	m.CSEEliminated.Add(float64(res.Eliminated))
	m.ReblocksInserted.Add(float64(res.ReblocksInserted))
	m.ChainsReordered.Add(float64(res.ChainsReordered))
	m.EstimationGaps.Add(float64(len(res.Gaps)))
	for et, n := range res.ExecTypes {
		m.ExecTypes.WithLabelValues(et.String()).Add(float64(n))
	}
	m.Duration.Observe(seconds)
}

func (m *Metrics) recordFailure() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}
