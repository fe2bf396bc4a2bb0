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
	"strings"
)

// Cleanup removes every shared-memory segment matching instanceID's
// prefix, unconditionally — it does not check whether some endpoint in
// this or another process currently has the segment mapped. It is meant
// to be run at tablet-server startup, before any session's endpoints
// are constructed, to purge segments orphaned by a previous crash.
func Cleanup(instanceID string) error {
	names, err := listSegmentNames()
	if err != nil {
		return err
	}
	prefix := segmentPrefix(instanceID)
	var firstErr error
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := removeSegmentByName(name); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shmexchange: cleanup %s: %w", name, err)
		}
	}
	return firstErr
}
