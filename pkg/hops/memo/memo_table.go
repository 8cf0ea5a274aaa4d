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

// Package memo estimates the memory requirements of hops. Estimates are
// computed bottom-up; worst-case statistics inferred for hops of unknown
// size are kept in a MemoTable for the duration of one pass and propagated
// to their consumers.
package memo

import "github.com/aloknsingh/systemml/pkg/hops"

// MemoTable maps hops whose exact output size is unknown to worst-case
// statistics inferred from their inputs. A MemoTable is scoped to a single
// estimation pass over a single DAG.
type MemoTable struct {
	stats map[hops.HopID]hops.Characteristics
}

// NewMemoTable returns an empty memo table.
func NewMemoTable() *MemoTable {
	return &MemoTable{stats: make(map[hops.HopID]hops.Characteristics)}
}

// MemoizeStatistics records worst-case statistics for a hop.
func (m *MemoTable) MemoizeStatistics(id hops.HopID, c hops.Characteristics) {
	m.stats[id] = c
}

// Statistics returns the worst-case statistics memoized for a hop.
func (m *MemoTable) Statistics(id hops.HopID) (hops.Characteristics, bool) {
	c, ok := m.stats[id]
	return c, ok
}

// Len returns the number of memoized hops.
func (m *MemoTable) Len() int { return len(m.stats) }

// InputStatistics returns the best known statistics of each input of h:
// exact characteristics if its dimensions are known, otherwise memoized
// worst-case characteristics, otherwise unknown. ok is true if at least one
// matrix input has statistics.
func (m *MemoTable) InputStatistics(
	d *hops.DAG, h *hops.Hop,
) (inputs []*hops.Hop, stats []hops.Characteristics, ok bool) {
	inputs = d.Inputs(h)
	stats = make([]hops.Characteristics, len(inputs))
	for i, in := range inputs {
		switch {
		case in.IsScalar():
			stats[i] = hops.Characteristics{Rows: 0, Cols: 0, NNZ: -1}
		case in.DimsKnown():
			stats[i] = in.Characteristics()
			ok = true
		default:
			if c, found := m.stats[in.ID]; found {
				stats[i] = c
				ok = true
			} else {
				stats[i] = hops.UnknownCharacteristics
			}
		}
	}
	return inputs, stats, ok
}

// HasInputStatistics returns true if any matrix input of h has exact or
// worst-case statistics.
func (m *MemoTable) HasInputStatistics(d *hops.DAG, h *hops.Hop) bool {
	_, _, ok := m.InputStatistics(d, h)
	return ok
}
