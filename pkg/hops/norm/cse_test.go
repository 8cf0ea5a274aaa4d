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

package norm_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/norm"
	"github.com/stretchr/testify/require"
)

func newDAG() *hops.DAG {
	return hops.NewDAG("test", hops.NewIDSequence())
}

func read(d *hops.DAG, name string, op hops.DataOpType) *hops.Hop {
	h := d.ConstructRead(name, op, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	h.SetDims(10, 10, -1)
	h.SetBlockSize(1000, 1000)
	return h
}

func write(d *hops.DAG, name string, in *hops.Hop) *hops.Hop {
	w := d.ConstructWrite(name, hops.TransientWrite, in, hops.FormatBinary, "")
	d.AddRoot(w)
	return w
}

func TestMergeLeaves(t *testing.T) {
	d := newDAG()
	x1, x2 := read(d, "X", hops.PersistentRead), read(d, "X", hops.PersistentRead)
	xt := read(d, "X", hops.TransientRead)
	i1, i2 := d.ConstructLiteral(hops.ValueTypeInt, "1"), d.ConstructLiteral(hops.ValueTypeInt, "1")
	f := d.ConstructLiteral(hops.ValueTypeDouble, "1")
	write(d, "A", d.ConstructBinary(hops.OpPlus, x1, i1))
	write(d, "B", d.ConstructBinary(hops.OpPlus, x2, i2))
	write(d, "C", d.ConstructBinary(hops.OpMult, x1, f))
	write(d, "D", d.ConstructBinary(hops.OpMult, xt, f))

	require.Equal(t, 2, norm.MergeLeaves(d))
	hops.CheckDAG(d)
	require.Nil(t, d.Hop(x2.ID))
	require.Nil(t, d.Hop(i2.ID))
	require.NotNil(t, d.Hop(xt.ID), "transient and persistent reads differ")
	require.NotNil(t, d.Hop(f.ID), "literals of different value types differ")
	require.Len(t, d.Parents(x1), 3)
	require.Len(t, d.Parents(i1), 2)
}

func TestEliminateCommonSubexpressions(t *testing.T) {
	d := newDAG()
	a := d.ConstructBinary(hops.OpPlus, read(d, "X", hops.PersistentRead), d.ConstructLiteral(hops.ValueTypeInt, "1"))
	b := d.ConstructBinary(hops.OpPlus, read(d, "X", hops.PersistentRead), d.ConstructLiteral(hops.ValueTypeInt, "1"))
	wa, wb := write(d, "A", a), write(d, "B", b)
	require.Equal(t, 8, d.Len())

	// Two leaves and the second addition; the writes have different targets.
	require.Equal(t, 3, norm.EliminateCommonSubexpressions(d))
	hops.CheckDAG(d)
	require.Equal(t, 5, d.Len())
	require.Equal(t, d.Input(wa, 0), d.Input(wb, 0))

	require.Zero(t, norm.EliminateCommonSubexpressions(d), "idempotent")
}

func TestMergeSiblingsCascades(t *testing.T) {
	d := newDAG()
	s1 := d.ConstructUnary(hops.OpSqrt, d.ConstructUnary(hops.OpExp, read(d, "X", hops.PersistentRead)))
	s2 := d.ConstructUnary(hops.OpSqrt, d.ConstructUnary(hops.OpExp, read(d, "X", hops.PersistentRead)))
	w1, w2 := write(d, "A", s1), write(d, "B", s2)

	require.Equal(t, 3, norm.EliminateCommonSubexpressions(d))
	hops.CheckDAG(d)
	require.Equal(t, s1, d.Input(w1, 0))
	require.Equal(t, s1, d.Input(w2, 0))
	require.Nil(t, d.Hop(s2.ID))
}

func TestMergeSiblingsKeepsSideEffects(t *testing.T) {
	d := newDAG()
	x := read(d, "X", hops.PersistentRead)
	p1, p2 := d.ConstructUnary(hops.OpPrint, x), d.ConstructUnary(hops.OpPrint, x)
	d.AddRoot(p1)
	d.AddRoot(p2)
	r1 := d.ConstructDataGen(hops.GenRand, 10, 10, 1, -1, []*hops.Hop{x})
	r2 := d.ConstructDataGen(hops.GenRand, 10, 10, 1, -1, []*hops.Hop{x})
	write(d, "A", r1)
	write(d, "B", r2)

	require.Zero(t, norm.EliminateCommonSubexpressions(d))
	require.Equal(t, 7, d.Len())
}

func TestMergeSiblingsRoots(t *testing.T) {
	d := newDAG()
	x := read(d, "X", hops.PersistentRead)
	e1, e2 := d.ConstructUnary(hops.OpExp, x), d.ConstructUnary(hops.OpExp, x)
	d.AddRoot(e1)
	d.AddRoot(e2)

	require.Equal(t, 1, norm.MergeSiblings(d))
	require.Equal(t, []*hops.Hop{e1}, d.Roots())
	hops.CheckDAG(d)
}

// randomDAG builds a DAG over a few named inputs with plenty of duplicate
// subexpressions.
func randomDAG(rng *rand.Rand, n int) *hops.DAG {
	d := newDAG()
	var pool []*hops.Hop
	for i := 0; i < n; i++ {
		var h *hops.Hop
		switch k := rng.Intn(6); {
		case k == 0 || len(pool) < 2:
			h = read(d, fmt.Sprintf("X%d", rng.Intn(2)), hops.PersistentRead)
		case k == 1:
			h = d.ConstructLiteral(hops.ValueTypeDouble, fmt.Sprint(rng.Intn(2)))
		case k == 2:
			h = d.ConstructUnary(hops.OpExp, pick(rng, pool, true))
		case k == 3:
			h = d.ConstructReorg(hops.ReorgTranspose, pick(rng, pool, true))
		default:
			h = d.ConstructBinary(hops.OpPlus, pick(rng, pool, true), pick(rng, pool, false))
		}
		pool = append(pool, h)
	}
	for i, h := range pool {
		if h.NumParents() == 0 && h.IsMatrix() {
			write(d, fmt.Sprintf("out%d", i), h)
		}
	}
	return d
}

func pick(rng *rand.Rand, pool []*hops.Hop, matrix bool) *hops.Hop {
	for {
		h := pool[rng.Intn(len(pool))]
		if !matrix || h.IsMatrix() {
			return h
		}
	}
}

// requireNoCommonSubexpressions checks the fixed point of elimination: no
// two leaves share a merge key and no two consumers of a hop are
// equivalent.
func requireNoCommonSubexpressions(t *testing.T, d *hops.DAG) {
	leaves := make(map[string]hops.HopID)
	for _, h := range d.Hops() {
		if h.NumInputs() == 0 && h.NumParents() > 0 {
			key := fmt.Sprintf("%s/%s/%s", h.OpString(), h.Name, h.ValueType)
			if other, ok := leaves[key]; ok {
				t.Fatalf("leaves %d and %d were not merged", other, h.ID)
			}
			leaves[key] = h.ID
		}
		parents := d.DistinctParents(h)
		for i := range parents {
			for j := i + 1; j < len(parents); j++ {
				require.False(t, d.Equivalent(parents[i], parents[j]),
					"hops %d and %d were not merged", parents[i].ID, parents[j].ID)
			}
		}
	}
}

func TestEliminateCommonSubexpressionsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		d := randomDAG(rng, 5+rng.Intn(40))
		before := d.Len()
		removed := 0
		for n := norm.EliminateCommonSubexpressions(d); n > 0; n = norm.EliminateCommonSubexpressions(d) {
			removed += n
		}
		require.Equal(t, before-removed, d.Len())
		hops.CheckDAG(d)
		requireNoCommonSubexpressions(t, d)
	}
}
