/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package shmexchange

import (
	"context"
	"testing"
	"time"
)

func TestNewDeadlineContextNever(t *testing.T) {
	ctx, cancel := NewDeadlineContext(context.Background(), NeverDeadline)
	defer cancel()

	if _, ok := ctx.Deadline(); ok {
		t.Fatal("NewDeadlineContext(NeverDeadline) produced a context with a deadline")
	}
}

func TestNewDeadlineContextFuture(t *testing.T) {
	d := MonoDeadline(time.Since(processStart) + 50*time.Millisecond)
	ctx, cancel := NewDeadlineContext(context.Background(), d)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("NewDeadlineContext(d) produced a context with no deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > time.Second {
		t.Fatalf("deadline %v from now, want a small positive duration", remaining)
	}
}

func TestRemainingUntilNoDeadline(t *testing.T) {
	_, ok := remainingUntil(context.Background())
	if ok {
		t.Fatal("remainingUntil(context.Background()) reported a deadline")
	}
}

func TestRemainingUntilElapsed(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	remaining, ok := remainingUntil(ctx)
	if !ok {
		t.Fatal("remainingUntil reported no deadline for an expired context")
	}
	if remaining != 0 {
		t.Fatalf("remainingUntil(expired) = %v, want 0", remaining)
	}
}
