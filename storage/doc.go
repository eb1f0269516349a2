// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for archivit.
//
// This package defines the repository interface that decouples storage
// implementation from business logic. The archive store is keyed by content
// hash; the interface exposes exactly the read/write contract the ingestion
// pipeline and search engine need: lookup-by-hash, insert-if-absent,
// upsert-description, full-scan-of-embeddings, and a parameterized substring
// query with a count.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.ImageRepository interface to enforce
// abstraction and enable alternative backends:
//
//	repo, err := sqlite.NewImageRepository(backend)  // returns storage.ImageRepository
//
// # Expected Outcomes vs Faults
//
// Expected outcomes are ordinary values: a missing record is ErrNotFound, an
// already-present hash makes AddImage return false. True faults (a failed
// connection, a broken statement) propagate as wrapped errors.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Writes are atomic per row.
package storage
