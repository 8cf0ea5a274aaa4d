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
	"runtime"

	"github.com/cockroachdb/errors"
)

// CatchOptimizerError catches any runtime panics from optimizer functions and
// stores them in *errp. It must be deferred directly:
//
//	defer hops.CatchOptimizerError(&err)
//
// This allows the rewrite passes to propagate errors internally as panics
// without adding error checks everywhere. This is only possible because a
// pass mutates nothing but the DAG it was handed, which the caller discards
// on error.
func CatchOptimizerError(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	if !ok {
		// Not an error object. For serious internal errors e.g. in the
		// scheduler, bad goroutine state, allocator problem etc, the go runtime
		// throws a string which does not implement error. So in this case we
		// suspect we are not able to recover, and must crash.
		panic(r)
	}
	if errors.HasInterface(err, (*runtime.Error)(nil)) {
		// Convert runtime errors to assertion failures, which include stacks.
		*errp = errors.HandleAsAssertionFailure(err)
		return
	}
	*errp = err
}
