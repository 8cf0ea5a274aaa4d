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

package memo_test

import (
	"testing"

	"github.com/aloknsingh/systemml/pkg/hops/testutils/hoptester"
	"github.com/cockroachdb/datadriven"
)

// TestDataDriven runs the files in testdata. See hoptester.RunCommand for the
// supported commands and flags.
func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		ht := hoptester.New()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return ht.RunCommand(t, d)
		})
	})
}
