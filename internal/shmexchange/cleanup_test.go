//go:build linux && (amd64 || arm64)

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

import "testing"

// TestCleanupOnlyMatchesOwnPrefix verifies Cleanup doesn't touch a
// segment belonging to a different instance id, even one that shares a
// path prefix character by character up to the delimiter.
func TestCleanupOnlyMatchesOwnPrefix(t *testing.T) {
	instanceID := testInstanceID(t)
	otherInstanceID := instanceID + "x"

	mine := NewOwnerEndpoint(instanceID, 1, Options{SkipRemoveOnClose: true})
	if err := mine.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	other := NewOwnerEndpoint(otherInstanceID, 1, Options{SkipRemoveOnClose: true})
	if err := other.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	t.Cleanup(func() { removeSegmentByName(segmentName(otherInstanceID, 1)) })

	if err := Cleanup(instanceID); err != nil {
		t.Fatalf("Cleanup() = %v", err)
	}

	if _, err := openSegment(instanceID, 1); err == nil {
		t.Fatal("openSegment for cleaned-up instance succeeded, want error")
	}
	seg, err := openSegment(otherInstanceID, 1)
	if err != nil {
		t.Fatalf("openSegment for untouched instance = %v, want nil", err)
	}
	seg.unmap()
}

func TestCleanupEmptyInstance(t *testing.T) {
	if err := Cleanup(testInstanceID(t)); err != nil {
		t.Fatalf("Cleanup() on an instance with no segments = %v, want nil", err)
	}
}
