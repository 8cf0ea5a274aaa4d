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

// Package explain renders optimized hop DAGs for people: as an indented
// tree, as a table of per-hop estimates, or as a Graphviz graph.
package explain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
)

// DisplayFormat selects how a DAG is rendered.
type DisplayFormat int

const (
	// DisplayTree prints the DAG as a tree per root.
	DisplayTree DisplayFormat = iota
	// DisplayTable prints one row per hop in an aligned table.
	DisplayTable
	// DisplayTSV prints the rows of DisplayTable as tab-separated values.
	DisplayTSV
	// DisplayDOT prints a Graphviz digraph.
	DisplayDOT
)

var displayFormatNames = [...]string{
	DisplayTree:  "tree",
	DisplayTable: "table",
	DisplayTSV:   "tsv",
	DisplayDOT:   "dot",
}

func (f DisplayFormat) String() string {
	if int(f) < len(displayFormatNames) {
		return displayFormatNames[f]
	}
	return fmt.Sprintf("DisplayFormat(%d)", int(f))
}

// ParseDisplayFormat parses the name of a display format.
func ParseDisplayFormat(s string) (DisplayFormat, error) {
	for i, n := range displayFormatNames {
		if n == s {
			return DisplayFormat(i), nil
		}
	}
	return 0, errors.Newf("unknown display format %q (expected one of: %s)",
		s, strings.Join(displayFormatNames[:], ", "))
}

// Columns are the headers of the rows returned by Rows.
var Columns = []string{
	"id", "op", "dims", "nnz", "blocks", "out", "proc", "total", "exec", "inputs",
}

// Rows returns one row per hop of d, in id order. Memory estimates are
// humanized; estimates that have not been computed print as "?".
func Rows(d *hops.DAG) [][]string {
	all := d.Hops()
	rows := make([][]string, 0, len(all))
	for _, h := range all {
		dims, nnz, blocks := h.ValueType.String(), "", ""
		if !h.IsScalar() {
			dims = fmt.Sprintf("%dx%d", h.Rows, h.Cols)
			nnz = strconv.FormatInt(h.NNZ, 10)
			blocks = fmt.Sprintf("%dx%d", h.RowsInBlock, h.ColsInBlock)
		}
		exec := h.ExecType.String()
		if h.ForcedExecType != hops.ExecTypeNone {
			exec += "*"
		}
		if h.RequiresRecompile {
			exec += " (recompile)"
		}
		ins := make([]string, h.NumInputs())
		for i, id := range h.InputIDs() {
			ins[i] = strconv.FormatInt(int64(id), 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(int64(h.ID), 10),
			h.OpString(),
			dims,
			nnz,
			blocks,
			humanizeutil.IBytesFloat(h.OutputMem),
			humanizeutil.IBytesFloat(h.ProcessingMem),
			humanizeutil.IBytesFloat(h.TotalMem),
			exec,
			strings.Join(ins, ","),
		})
	}
	return rows
}

// Write renders d to w in the given format. flags only apply to
// DisplayTree.
func Write(w io.Writer, d *hops.DAG, f DisplayFormat, flags hops.FmtFlags) error {
	switch f {
	case DisplayTree:
		_, err := fmt.Fprintf(w, "block %s\n%s", d.Name, hops.FormatDAG(d, flags))
		return err

	case DisplayTable:
		rows := Rows(d)
		fmt.Fprintf(w, "block %s\n", d.Name)
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(Columns)
		table.AppendBulk(rows)
		table.Render()
		_, err := fmt.Fprintf(w, "(%d hop%s)\n", len(rows), plural(len(rows)))
		return err

	case DisplayTSV:
		csvWriter := csv.NewWriter(w)
		csvWriter.Comma = '\t'
		_ = csvWriter.Write(append([]string{"block"}, Columns...))
		for _, row := range Rows(d) {
			_ = csvWriter.Write(append([]string{d.Name}, row...))
		}
		csvWriter.Flush()
		return csvWriter.Error()

	case DisplayDOT:
		_, err := io.WriteString(w, DOT(d))
		return err
	}
	return errors.AssertionFailedf("unhandled display format %d", int(f))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
