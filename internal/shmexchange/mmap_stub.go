//go:build !linux || !(amd64 || arm64)

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

var pageSize = 4096

func createSegment(instanceID string, sessionID uint64) (*segment, error) {
	return nil, ErrPlatformUnsupported
}

func openSegment(instanceID string, sessionID uint64) (*segment, error) {
	return nil, ErrPlatformUnsupported
}

func (s *segment) unmap() error {
	return ErrPlatformUnsupported
}

func (s *segment) remove() error {
	return ErrPlatformUnsupported
}

func listSegmentNames() ([]string, error) {
	return nil, ErrPlatformUnsupported
}

func removeSegmentByName(name string) error {
	return ErrPlatformUnsupported
}
