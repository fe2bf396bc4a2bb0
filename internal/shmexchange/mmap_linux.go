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
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// pageSize is queried once at init rather than assumed, so the mapping
// size stays correct across hosts with different configured page sizes.
var pageSize = os.Getpagesize()

// createSegment creates a new named shared-memory segment sized to one
// OS page, maps it read/write, and placement-constructs the header. The
// caller owns the returned segment: it is responsible for eventually
// removing the named object.
func createSegment(instanceID string, sessionID uint64) (*segment, error) {
	name := segmentName(instanceID, sessionID)
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("shmexchange: create segment %s: %w", name, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(pageSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("shmexchange: resize segment %s: %w", name, err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("shmexchange: mmap segment %s: %w", name, err)
	}

	seg := &segment{file: file, mem: mem, path: path, name: name}
	seg.headerPtr().init()
	return seg, nil
}

// openSegment opens an existing named shared-memory segment and maps it
// read/write. It must not re-initialize the header.
func openSegment(instanceID string, sessionID uint64) (*segment, error) {
	name := segmentName(instanceID, sessionID)
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shmexchange: open segment %s: %w", name, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shmexchange: stat segment %s: %w", name, err)
	}
	size := info.Size()
	if uint64(size) < headerSize {
		file.Close()
		return nil, fmt.Errorf("shmexchange: segment %s too small: %d bytes", name, size)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shmexchange: mmap segment %s: %w", name, err)
	}

	seg := &segment{file: file, mem: mem, path: path, name: name}
	if err := seg.headerPtr().validate(); err != nil {
		unix.Munmap(mem)
		file.Close()
		return nil, fmt.Errorf("shmexchange: %w", err)
	}
	return seg, nil
}

// unmap releases the mapping and the file descriptor, but does not
// remove the named OS object.
func (s *segment) unmap() error {
	var firstErr error
	if s.mem != nil {
		if err := unix.Munmap(s.mem); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shmexchange: munmap: %w", err)
		}
		s.mem = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	return firstErr
}

// remove unlinks the named OS object. Only the owner endpoint ever
// calls this.
func (s *segment) remove() error {
	return os.Remove(s.path)
}

// listSegmentNames enumerates every shared-memory object name in the
// platform's shared-memory directory, for Cleanup.
func listSegmentNames() ([]string, error) {
	entries, err := os.ReadDir(shmDir())
	if err != nil {
		return nil, fmt.Errorf("shmexchange: list %s: %w", shmDir(), err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// removeSegmentByName unlinks a shared-memory object by name, used by
// Cleanup to purge segments this process doesn't hold a handle to.
func removeSegmentByName(name string) error {
	return os.Remove(segmentPath(name))
}
