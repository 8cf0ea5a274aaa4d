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

package treeprinter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreePrinter(t *testing.T) {
	tp := New()
	root := tp.Child("root")
	c1 := root.Child("child1")
	c1.Childf("grandchild %d", 1)
	c1.Child("grandchild 2")
	root.Child("child2").AddLine("more")

	exp := `root
 ├── child1
 │    ├── grandchild 1
 │    └── grandchild 2
 └── child2
     more
`
	require.Equal(t, exp, tp.String())
}
