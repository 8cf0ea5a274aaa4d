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

package log

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func TestLogTags(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	ctx := logtags.AddTag(context.Background(), "plan", 7)
	ctx = logtags.AddTag(ctx, "block", "main")
	Infof(ctx, "eliminated %d hops in %s", 3, redact.Safe("cse"))

	out := buf.String()
	require.Contains(t, out, "[plan=7,block=main] eliminated 3 hops in cse")
	require.Equal(t, byte('I'), out[0])
	require.Contains(t, out, "structured_test.go:")
}

func TestVerbosity(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetVerbosity(0)

	ctx := context.Background()
	SetVerbosity(1)
	VEventf(ctx, 2, "hidden")
	VEventf(ctx, 1, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.True(t, V(1))
	require.False(t, V(2))
}

func TestMinSeverity(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetMinSeverity(SeverityInfo)

	saved := logging.nowFn
	defer func() { logging.nowFn = saved }()
	logging.nowFn = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	SetMinSeverity(SeverityWarning)
	ctx := context.Background()
	Infof(ctx, "dropped")
	Warningf(ctx, "kept")
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "W260102 03:04:05.000000")
}
