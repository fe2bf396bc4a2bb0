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

import (
	"os"
	"testing"
)

func TestCreateOpenSegmentRoundTrip(t *testing.T) {
	instanceID := testInstanceID(t)
	sessionID := uint64(1)

	owner, err := createSegment(instanceID, sessionID)
	if err != nil {
		t.Fatalf("createSegment() = %v", err)
	}
	t.Cleanup(func() {
		owner.unmap()
		os.Remove(owner.path)
	})

	if got := owner.regionSize(); got != uint64(pageSize) {
		t.Fatalf("regionSize() = %d, want %d", got, pageSize)
	}
	if State(owner.headerPtr().state) != StateIdle {
		t.Fatalf("initial state = %s, want Idle", State(owner.headerPtr().state))
	}

	client, err := openSegment(instanceID, sessionID)
	if err != nil {
		t.Fatalf("openSegment() = %v", err)
	}
	defer client.unmap()

	if client.regionSize() != owner.regionSize() {
		t.Fatalf("client region size %d != owner region size %d", client.regionSize(), owner.regionSize())
	}

	copy(owner.payload(), []byte("hello"))
	if got := string(client.payload()[:5]); got != "hello" {
		t.Fatalf("client sees payload %q, want %q", got, "hello")
	}
}

func TestCreateSegmentAlreadyExists(t *testing.T) {
	instanceID := testInstanceID(t)
	sessionID := uint64(1)

	owner, err := createSegment(instanceID, sessionID)
	if err != nil {
		t.Fatalf("createSegment() = %v", err)
	}
	t.Cleanup(func() {
		owner.unmap()
		os.Remove(owner.path)
	})

	if _, err := createSegment(instanceID, sessionID); err == nil {
		t.Fatal("createSegment() on an existing segment name = nil, want error")
	}
}

func TestOpenSegmentMissing(t *testing.T) {
	if _, err := openSegment(testInstanceID(t), 12345); err == nil {
		t.Fatal("openSegment() on a nonexistent segment = nil, want error")
	}
}

func TestOpenSegmentRejectsForeignData(t *testing.T) {
	instanceID := testInstanceID(t)
	name := segmentName(instanceID, 1)
	path := segmentPath(name)

	if err := os.WriteFile(path, make([]byte, pageSize), 0600); err != nil {
		t.Fatalf("write foreign segment file: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	if _, err := openSegment(instanceID, 1); err == nil {
		t.Fatal("openSegment() on a zeroed foreign file = nil, want validation error")
	}
}

func TestRemoveSegmentByName(t *testing.T) {
	instanceID := testInstanceID(t)
	seg, err := createSegment(instanceID, 1)
	if err != nil {
		t.Fatalf("createSegment() = %v", err)
	}
	name := seg.name
	if err := seg.unmap(); err != nil {
		t.Fatalf("unmap() = %v", err)
	}

	if err := removeSegmentByName(name); err != nil {
		t.Fatalf("removeSegmentByName() = %v", err)
	}
	if _, err := os.Stat(segmentPath(name)); !os.IsNotExist(err) {
		t.Fatalf("segment file still present after removeSegmentByName")
	}
}
