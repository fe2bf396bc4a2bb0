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
	"path/filepath"
	"unsafe"
)

// segment is a mapped shared-memory region: [header | payload].
type segment struct {
	file *os.File
	mem  []byte
	path string
	name string
}

// segmentName derives the OS-level object name from the instance and
// session ids: yb_pg_{instance_id}_{session_id}.
func segmentName(instanceID string, sessionID uint64) string {
	return fmt.Sprintf("yb_pg_%s_%d", instanceID, sessionID)
}

// segmentPrefix is the common prefix shared by every segment belonging
// to one tablet-server instance, used by Cleanup.
func segmentPrefix(instanceID string) string {
	return fmt.Sprintf("yb_pg_%s_", instanceID)
}

// shmDir returns the platform's shared-memory directory: /dev/shm
// on POSIX hosts that have it mounted, otherwise the process temp dir.
func shmDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

func segmentPath(name string) string {
	return filepath.Join(shmDir(), name)
}

func (s *segment) headerPtr() *header {
	return (*header)(unsafe.Pointer(&s.mem[0]))
}

// payload returns the full payload region: everything in the mapped
// region after the header.
func (s *segment) payload() []byte {
	return s.mem[headerSize:]
}

// regionSize is the total size of the mapped region in bytes (one OS
// page).
func (s *segment) regionSize() uint64 {
	return uint64(len(s.mem))
}
