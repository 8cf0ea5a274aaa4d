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

package base

const (
	// DefaultBlockSize is the default number of rows and columns per block
	// of a distributed matrix.
	DefaultBlockSize = 1000

	// DefaultLocalMemBudget is the default memory budget for operations
	// placed on the local engine.
	DefaultLocalMemBudget = 2 << 30

	// MinDefaultSize is the smallest size assumed for an output whose size
	// cannot be estimated.
	MinDefaultSize = 1 << 30

	// DefaultParallelism is the default number of statement blocks
	// optimized concurrently.
	DefaultParallelism = 4

	// MaxCSEIterations bounds the number of common subexpression
	// elimination rounds run to reach a fixed point.
	MaxCSEIterations = 16
)
