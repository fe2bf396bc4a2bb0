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
	"testing"
	"time"
)

// testInstanceID returns a unique-enough instance id for one test, so
// concurrent test binaries never collide on the same segment path.
func testInstanceID(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
}

// newTestPair creates a fresh owner/client endpoint pair sharing one
// segment, registering cleanup so the segment is always removed even if
// the test fails or panics.
func newTestPair(t *testing.T) (owner, client *Endpoint, sessionID uint64) {
	t.Helper()

	instanceID := testInstanceID(t)
	sessionID = uint64(time.Now().UnixNano())

	owner = NewOwnerEndpoint(instanceID, sessionID, Options{})
	t.Cleanup(func() { owner.Close() })

	client = NewClientEndpoint(instanceID, sessionID, Options{})
	t.Cleanup(func() { client.Close() })

	return owner, client, sessionID
}
