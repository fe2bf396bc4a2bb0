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
	"sync/atomic"
	"syscall"
	"unsafe"
)

// Linux futex constants. golang.org/x/sys/unix carries the FUTEX_WAIT /
// FUTEX_WAKE op codes but no stable wrapper around the futex(2) syscall
// itself across the architectures this package targets, so the raw
// syscall is issued directly here. The ops are the shared (non-private)
// variants: the futex word lives in a MAP_SHARED segment that each
// endpoint maps at its own address, so waits and wakes must be keyed by
// the underlying page, not by the calling process's virtual address.
const (
	futexWaitShared = 0 // FUTEX_WAIT
	futexWakeShared = 1 // FUTEX_WAKE
)

// ErrFutexTimeout is returned by futexWaitTimeout when the wait times
// out before the value at addr changes.
var ErrFutexTimeout = fmt.Errorf("shmexchange: futex wait timed out")

// futexWait blocks while *addr == val, waking on a matching futexWake or
// a spurious signal. Callers must re-check the condition they were
// waiting on after this returns — spurious wakes and races between the
// snapshot and syscall entry are both possible and are not errors.
func futexWait(addr *uint32, val uint32) error {
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	_, _, errno := syscall.RawSyscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitShared,
		uintptr(val),
		0,
		0,
		0,
	)
	if errno != 0 && errno != syscall.EAGAIN && errno != syscall.EINTR {
		return fmt.Errorf("shmexchange: futex wait: %w", errno)
	}
	return nil
}

// futexWaitTimeout is futexWait bounded by timeoutNs nanoseconds. A
// non-positive timeout waits forever, matching NeverDeadline.
func futexWaitTimeout(addr *uint32, val uint32, timeoutNs int64) error {
	if timeoutNs <= 0 {
		return futexWait(addr, val)
	}
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	ts := syscall.Timespec{
		Sec:  timeoutNs / 1e9,
		Nsec: timeoutNs % 1e9,
	}
	_, _, errno := syscall.RawSyscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitShared,
		uintptr(val),
		uintptr(unsafe.Pointer(&ts)),
		0,
		0,
	)
	switch errno {
	case 0, syscall.EAGAIN, syscall.EINTR:
		return nil
	case syscall.ETIMEDOUT:
		return ErrFutexTimeout
	default:
		return fmt.Errorf("shmexchange: futex wait: %w", errno)
	}
}

// futexWake wakes up to n threads blocked in futexWait/futexWaitTimeout
// on addr, returning the number actually woken.
func futexWake(addr *uint32, n int) (int, error) {
	woken, _, errno := syscall.RawSyscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakeShared,
		uintptr(n),
		0,
		0,
		0,
	)
	if errno != 0 {
		return 0, fmt.Errorf("shmexchange: futex wake: %w", errno)
	}
	return int(woken), nil
}
