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
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrShutdown is returned by Send and Poll once SignalStop has been
// observed. It is terminal: Send and Poll keep returning it afterwards.
var ErrShutdown = errors.New("shmexchange: shutdown in progress")

// IllegalStateError is returned by Send when the header was not ready
// for a new request, e.g. a second concurrent Send on the same
// endpoint. It carries the state actually observed so callers can
// diagnose the misuse.
type IllegalStateError struct {
	Observed State
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("shmexchange: send in wrong state: %s", e.Observed)
}

// GRPCStatus lets IllegalStateError be surfaced directly by a caller
// that already propagates gRPC statuses elsewhere in the process.
func (e *IllegalStateError) GRPCStatus() *status.Status {
	return status.New(codes.FailedPrecondition, e.Error())
}

// TimedOutError is returned by Send when the caller's deadline elapsed
// before a response arrived. It carries the state observed at timeout.
type TimedOutError struct {
	Observed State
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("shmexchange: timed out waiting for response, state: %s", e.Observed)
}

// GRPCStatus lets TimedOutError be surfaced directly by a caller that
// already propagates gRPC statuses elsewhere in the process.
func (e *TimedOutError) GRPCStatus() *status.Status {
	return status.New(codes.DeadlineExceeded, e.Error())
}

// shutdownGRPCStatus is the gRPC projection of ErrShutdown. It is a
// function rather than a method because ErrShutdown is a plain sentinel
// error, not a distinguished type — callers that want a *status.Status
// for it call ShutdownGRPCStatus() instead of type-asserting.
func shutdownGRPCStatus() *status.Status {
	return status.New(codes.Unavailable, ErrShutdown.Error())
}

// ShutdownGRPCStatus returns the gRPC status projection of ErrShutdown,
// for callers that already propagate gRPC statuses elsewhere and want a
// consistent mapping for all three exchange error kinds.
func ShutdownGRPCStatus() *status.Status {
	return shutdownGRPCStatus()
}
