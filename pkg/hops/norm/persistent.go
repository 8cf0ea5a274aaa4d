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

package norm

import (
	"github.com/aloknsingh/systemml/pkg/hops"
	"golang.org/x/exp/slices"
)

// RemovePersistentReadWrite turns persistent reads of the named inputs and
// persistent writes of the named outputs into transient reads and writes.
// It is used when an embedding application binds inputs and outputs in
// memory instead of going through files. It returns the number of hops
// rewritten.
func RemovePersistentReadWrite(d *hops.DAG, inputs, outputs []string) int {
	if len(inputs) == 0 && len(outputs) == 0 {
		return 0
	}
	rewritten := 0
	for _, h := range d.Hops() {
		if h.Op != hops.DataOp {
			continue
		}
		p := h.Private.(*hops.DataPrivate)
		var to hops.DataOpType
		switch {
		case p.Op == hops.PersistentRead && slices.Contains(inputs, h.Name):
			to = hops.TransientRead
		case p.Op == hops.PersistentWrite && slices.Contains(outputs, h.Name):
			to = hops.TransientWrite
		default:
			continue
		}
		h.Private = &hops.DataPrivate{Op: to, Format: hops.FormatBinary}
		rewritten++
	}
	return rewritten
}
