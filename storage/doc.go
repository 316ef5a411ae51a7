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


// Package storage provides the storage abstraction layer for kala.
//
// This package defines the collection store interfaces that decouple the
// persistence engine from the ingestion pipeline. Different backends (BadgerDB
// on disk, BadgerDB in memory, test doubles) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interfaces to enforce
// abstraction:
//
//	store, err := badger.NewStore(path)  // returns storage.CollectionStore
//
// This keeps consumers from coupling to BadgerDB specifics and lets tests
// substitute their own Collection implementations.
//
// # Architecture
//
//   - CollectionStore: opens or creates named collections (idempotent)
//   - Collection: appends, upserts, reads and searches documents
//   - EmbeddingFunction: optional per-handle vector computation on write
//
// # Usage
//
//	store, err := badger.NewStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	products, err := store.OpenCollection(ctx, "products")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = products.AddRecords(ctx, ids, titles, metadatas)
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Collisions
//
// AddRecords rejects ids that already exist in the collection with
// ErrDuplicateKey; Upsert overwrites them.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
