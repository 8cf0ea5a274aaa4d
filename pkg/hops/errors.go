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
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// ErrStructural marks errors that abort the compilation of a statement
// block: a dimension mismatch in a multiply chain, an operator reaching a
// rule that cannot handle it, a malformed hop. Test with errors.Is.
var ErrStructural = errors.New("structural error")

// StructuralErrorf returns a structural error annotated with the source
// position of the offending hop.
func StructuralErrorf(pos SourcePos, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	err = errors.Wrapf(err, "line %d, column %d",
		redact.Safe(pos.BeginLine), redact.Safe(pos.BeginCol))
	return errors.Mark(err, ErrStructural)
}

// IsStructuralError returns true if err was created by StructuralErrorf.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}

// EstimationGap records a hop whose output size could not be derived
// statically. It is not an error: the hop was estimated with worst-case or
// default sizes and flagged for recompilation.
type EstimationGap struct {
	ID     HopID
	Op     string
	Name   string
	Pos    SourcePos
	Reason string
}

func (g EstimationGap) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hop %d (%s", g.ID, g.Op)
	if g.Name != "" {
		fmt.Fprintf(&b, " %s", g.Name)
	}
	fmt.Fprintf(&b, ") at line %d: %s", g.Pos.BeginLine, g.Reason)
	return b.String()
}

func newParseError(kind, s string, names []string) error {
	return errors.Newf("unknown %s %q (expected one of: %s)",
		redact.Safe(kind), s, redact.Safe(strings.Join(names, ", ")))
}
