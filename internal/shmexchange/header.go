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
	"unsafe"
)

// State is the shared-header state machine's enumeration. It is stored
// in the header's state word and doubles as the futex word both sides
// wait on.
type State uint32

const (
	// StateIdle is the only resting state.
	StateIdle State = iota
	// StateRequestSent means a request is waiting for the responder.
	StateRequestSent
	// StateResponseSent means a reply is waiting for the sender.
	StateResponseSent
	// StateShutdown is terminal; no further transitions are possible.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRequestSent:
		return "RequestSent"
	case StateResponseSent:
		return "ResponseSent"
	case StateShutdown:
		return "Shutdown"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// segmentMagic identifies a mapped region as belonging to this exchange
// so Open can fail fast on a stale or foreign segment instead of
// silently misinterpreting garbage bytes as a header.
var segmentMagic = [8]byte{'Y', 'B', 'S', 'H', 'M', 'E', 'X', 0}

// segmentVersion pins the compiled header layout. There is no
// wire-compatibility story across versions — both processes are always
// built from the same tablet-server release.
const segmentVersion = uint32(1)

// header is the fixed-size synchronization record placed at offset 0 of
// the mapped region. It is followed immediately by the payload
// buffer, which extends to the end of the mapped region. The state and
// dataSize fields are accessed through atomic operations because they are
// shared, unsynchronized-by-the-runtime memory: two different OS
// processes map the same physical pages. magic and version are written
// once by init before the segment is opened elsewhere and only read
// afterwards.
type header struct {
	magic    [8]byte
	version  uint32
	state    uint32 // atomic; also the futex word for state transitions
	dataSize uint64 // valid only while state is RequestSent or ResponseSent
	_        [40]byte
}

// headerSize is computed from the struct layout rather than hardcoded,
// so it stays correct if the field list above ever changes; both sides
// of the exchange always run the same compiled binary release, so this
// value is guaranteed identical on both ends of the mapping.
var headerSize = uint64(unsafe.Sizeof(header{}))

func (h *header) init() {
	h.magic = segmentMagic
	h.version = segmentVersion
	h.state = uint32(StateIdle)
	h.dataSize = 0
}

func (h *header) validate() error {
	if h.magic != segmentMagic {
		return fmt.Errorf("shmexchange: bad segment magic %q", h.magic)
	}
	if h.version != segmentVersion {
		return fmt.Errorf("shmexchange: unsupported segment version %d, want %d", h.version, segmentVersion)
	}
	return nil
}
