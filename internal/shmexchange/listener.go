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
	"errors"

	"go.uber.org/zap"
)

// Callback is invoked by a Listener with the byte count of a just-arrived
// request. It is responsible for reading the payload out of the
// endpoint (via Endpoint.Payload) and for eventually calling Respond.
type Callback func(size int)

// Listener turns an owning Endpoint into an event-driven server:
// a goroutine loops calling Poll and dispatches to a callback, exiting
// cleanly on shutdown.
type Listener struct {
	ep       *Endpoint
	callback Callback
	logger   *zap.Logger

	done chan struct{}
}

// NewListener starts the listener goroutine immediately. ep should be an
// owning endpoint created with NewOwnerEndpoint; the listener drives it
// for the rest of its lifetime.
func NewListener(ep *Endpoint, callback Callback) *Listener {
	l := &Listener{
		ep:       ep,
		callback: callback,
		logger:   ep.logger,
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Listener) run() {
	defer close(l.done)
	ctx := context.Background()
	for {
		size, err := l.ep.Poll(ctx)
		if err != nil {
			if !errors.Is(err, ErrShutdown) {
				l.logger.Fatal("listener poll failed",
					zap.Uint64("session_id", l.ep.sessionID),
					zap.String("instance_id", l.ep.instanceID),
					zap.Error(err))
			}
			return
		}
		l.callback(size)
	}
}

// Close signals shutdown on the underlying endpoint and waits for the
// listener goroutine to exit, mirroring the original's destructor order
// (signal first, then join) — joining before signaling would deadlock
// against a poller blocked forever.
func (l *Listener) Close() {
	l.ep.SignalStop()
	<-l.done
}
