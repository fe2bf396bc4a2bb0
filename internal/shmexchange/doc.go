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

// Package shmexchange implements a single-slot, single-producer /
// single-consumer request/response rendezvous over a named shared-memory
// segment. It is used between a tablet server process and a co-located
// SQL proxy process on the same host: a client endpoint writes a request
// payload into the segment, wakes the server, and blocks until the
// server writes a response payload back into the same segment.
//
// The exchange is payload-agnostic — callers marshal and unmarshal their
// own bytes — and carries exactly one in-flight request at a time.
package shmexchange
