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
	"sync/atomic"

	"go.uber.org/zap"
)

// Reply is what Send returns on success. Oversize is reported as a
// structured field rather than through a distinguished pointer value,
// so a caller never has to reinterpret a returned pointer's numeric
// value to recover the reported size.
type Reply struct {
	// Data is a view into the segment's payload region, valid until the
	// next call to Obtain or Send on this endpoint. Nil when Oversize.
	Data []byte
	// Oversize is true when the responder's reply did not fit in the
	// segment; Size then holds the byte count that was reported, and
	// the caller must fetch the actual bytes out-of-band.
	Oversize bool
	// Size is the reply length in bytes, valid whether or not Oversize.
	Size int
}

// Options configures Endpoint construction.
type Options struct {
	// Logger receives fatal-grade protocol-violation and lifecycle
	// diagnostics. A nil Logger is treated as zap.NewNop().
	Logger *zap.Logger
	// SkipRemoveOnClose suppresses removal of the named segment on
	// owner Close, for tests that want to inspect segments post-mortem.
	// Ignored on a non-owner endpoint.
	SkipRemoveOnClose bool
}

// Endpoint is one process's handle to an exchange. Two endpoints —
// one owner, one non-owner — ever share a segment concurrently.
type Endpoint struct {
	seg        *segment
	owner      bool
	instanceID string
	sessionID  uint64
	skipRemove bool
	logger     *zap.Logger

	lastSize   int
	failedPrev bool
}

// NewOwnerEndpoint creates the named segment and returns the owning
// endpoint (the tablet-server side). Segment creation failure is fatal
// to the process: the exchange is assumed integral to the session it
// belongs to, and there is no meaningful local recovery.
func NewOwnerEndpoint(instanceID string, sessionID uint64, opts Options) *Endpoint {
	logger := orNop(opts.Logger)
	seg, err := createSegment(instanceID, sessionID)
	if err != nil {
		logger.Fatal("create shared exchange segment",
			zap.String("instance_id", instanceID), zap.Uint64("session_id", sessionID), zap.Error(err))
	}
	return &Endpoint{
		seg: seg, owner: true, instanceID: instanceID, sessionID: sessionID,
		skipRemove: opts.SkipRemoveOnClose, logger: logger,
	}
}

// NewClientEndpoint opens an existing segment and returns the
// non-owning endpoint (the SQL proxy side). Open failure is fatal to
// the process for the same reason as NewOwnerEndpoint.
func NewClientEndpoint(instanceID string, sessionID uint64, opts Options) *Endpoint {
	logger := orNop(opts.Logger)
	seg, err := openSegment(instanceID, sessionID)
	if err != nil {
		logger.Fatal("open shared exchange segment",
			zap.String("instance_id", instanceID), zap.Uint64("session_id", sessionID), zap.Error(err))
	}
	return &Endpoint{
		seg: seg, owner: false, instanceID: instanceID, sessionID: sessionID, logger: logger,
	}
}

// SessionID returns the exchange's session id.
func (e *Endpoint) SessionID() uint64 { return e.sessionID }

// IsOwner reports whether this endpoint created (and will remove) the
// backing segment.
func (e *Endpoint) IsOwner() bool { return e.owner }

// Obtain reserves a requiredSize-byte window of the payload region for
// the caller to fill in before calling Send. It never blocks and never
// touches the state machine. It records requiredSize as the size the
// next Send transmits, then returns ok=false, leaving the header
// untouched, if the payload wouldn't fit in the segment.
func (e *Endpoint) Obtain(requiredSize int) (buf []byte, ok bool) {
	e.lastSize = requiredSize
	if headerSize+uint64(requiredSize) > e.seg.regionSize() {
		return nil, false
	}
	return e.seg.payload()[:requiredSize], true
}

// readyToSend evaluates the readiness predicate against an
// already-observed state.
func readyToSend(state State, failedPrev bool) bool {
	return state == StateIdle || (failedPrev && state == StateResponseSent)
}

// ReadyToSend is the advisory readiness check: a subsequent Send
// still rechecks under the same atomic state word, so a true result here
// does not guarantee Send succeeds if the state changes concurrently.
func (e *Endpoint) ReadyToSend() bool {
	h := e.seg.headerPtr()
	state := State(atomic.LoadUint32(&h.state))
	return readyToSend(state, e.failedPrev)
}

// Send transmits the buffer most recently filled via Obtain and blocks
// for a reply until ctx's deadline passes, the exchange shuts down, or a
// reply arrives. Only ctx's deadline is consulted; cancelling ctx does
// not end the wait. Use NewDeadlineContext to convert a monotonic
// deadline; a context with no deadline blocks until reply or shutdown.
func (e *Endpoint) Send(ctx context.Context) (Reply, error) {
	h := e.seg.headerPtr()

	state := State(atomic.LoadUint32(&h.state))
	if state == StateShutdown {
		return Reply{}, ErrShutdown
	}
	if !readyToSend(state, e.failedPrev) {
		return Reply{}, &IllegalStateError{Observed: state}
	}
	// data_size must be visible to the responder before it can observe
	// RequestSent, so it is written before the state transition, not
	// after.
	atomic.StoreUint64(&h.dataSize, uint64(e.lastSize))
	if !atomic.CompareAndSwapUint32(&h.state, uint32(state), uint32(StateRequestSent)) {
		// Lost a race against a concurrent Send on the same endpoint
		// (misuse) or against SignalStop.
		observed := State(atomic.LoadUint32(&h.state))
		e.failedPrev = true
		if observed == StateShutdown {
			return Reply{}, ErrShutdown
		}
		return Reply{}, &IllegalStateError{Observed: observed}
	}
	futexWake(&h.state, 1)

	for {
		cur := State(atomic.LoadUint32(&h.state))
		if cur == StateResponseSent {
			break
		}
		if cur == StateShutdown {
			e.failedPrev = true
			return Reply{}, ErrShutdown
		}
		remaining, hasDeadline := remainingUntil(ctx)
		if hasDeadline && remaining == 0 {
			e.failedPrev = true
			return Reply{}, &TimedOutError{Observed: cur}
		}
		var err error
		if hasDeadline {
			err = futexWaitTimeout(&h.state, uint32(cur), remaining.Nanoseconds())
		} else {
			err = futexWait(&h.state, uint32(cur))
		}
		if err == ErrFutexTimeout {
			observed := State(atomic.LoadUint32(&h.state))
			e.failedPrev = true
			return Reply{}, &TimedOutError{Observed: observed}
		}
		// Spurious wake, real wake, or benign syscall error: loop back
		// and re-check the state under the atomic word.
	}

	size := atomic.LoadUint64(&h.dataSize)
	atomic.StoreUint32(&h.state, uint32(StateIdle))
	futexWake(&h.state, 1)
	e.failedPrev = false

	if headerSize+size > e.seg.regionSize() {
		return Reply{Oversize: true, Size: int(size)}, nil
	}
	return Reply{Data: e.seg.payload()[:size], Size: int(size)}, nil
}

// Respond replies to the currently pending request with a size-byte
// payload the caller has already written into the segment (via the data
// addressed by Poll's caller, e.g. e.seg.payload()). If no request is
// pending, Respond returns silently on Shutdown and terminates the
// process otherwise, since the peer has violated the protocol.
func (e *Endpoint) Respond(size int) {
	h := e.seg.headerPtr()
	state := State(atomic.LoadUint32(&h.state))
	if state != StateRequestSent {
		if state == StateShutdown {
			return
		}
		e.logger.Fatal("respond in wrong state",
			zap.Uint64("session_id", e.sessionID), zap.String("state", state.String()))
		return
	}
	atomic.StoreUint64(&h.dataSize, uint64(size))
	if !atomic.CompareAndSwapUint32(&h.state, uint32(StateRequestSent), uint32(StateResponseSent)) {
		// Raced with a concurrent SignalStop; nothing to notify.
		return
	}
	futexWake(&h.state, 1)
}

// Poll blocks until a request arrives or the exchange shuts down, then
// returns the request's byte count without changing state. The caller
// reads the payload from the segment and eventually calls Respond. Poll
// accepts a context, letting a deadline-bearing caller bound the wait
// the same way Send does. A context with no deadline blocks until a
// request arrives or SignalStop is called: a plain cancellation with no
// deadline can only be observed between futex wakes, not while blocked
// in the syscall itself.
func (e *Endpoint) Poll(ctx context.Context) (int, error) {
	h := e.seg.headerPtr()
	for {
		state := State(atomic.LoadUint32(&h.state))
		if state == StateRequestSent {
			return int(atomic.LoadUint64(&h.dataSize)), nil
		}
		if state == StateShutdown {
			return 0, ErrShutdown
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		remaining, hasDeadline := remainingUntil(ctx)
		if hasDeadline && remaining == 0 {
			return 0, context.DeadlineExceeded
		}
		var err error
		if hasDeadline {
			err = futexWaitTimeout(&h.state, uint32(state), remaining.Nanoseconds())
		} else {
			err = futexWait(&h.state, uint32(state))
		}
		if err == ErrFutexTimeout {
			return 0, context.DeadlineExceeded
		}
		// Spurious wake, real wake, or benign syscall error: loop back
		// and re-check the state under the atomic word.
	}
}

// Payload returns the segment's payload region, for a responder that
// needs to read the request bytes Poll signaled, or a sender inspecting
// the buffer it wrote via Obtain.
func (e *Endpoint) Payload() []byte {
	return e.seg.payload()
}

// SignalStop transitions the exchange to Shutdown and wakes every
// waiter. Safe to call multiple times and from either endpoint.
func (e *Endpoint) SignalStop() {
	h := e.seg.headerPtr()
	atomic.StoreUint32(&h.state, uint32(StateShutdown))
	futexWake(&h.state, 1<<30) // broadcast: wake every possible waiter
}

// Close releases the mapping. The owner additionally removes the named
// OS object, unless SkipRemoveOnClose was set.
func (e *Endpoint) Close() error {
	if err := e.seg.unmap(); err != nil {
		return err
	}
	if e.owner && !e.skipRemove {
		if err := e.seg.remove(); err != nil {
			return err
		}
	}
	return nil
}
