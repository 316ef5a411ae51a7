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


package core

import (
	"errors"
	"fmt"
)

// Pipeline errors
var (
	// ErrMissingField indicates a required column is absent from the input schema.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidBatchSize indicates a batch size below 1.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrStoreWrite indicates a batch write to the collection store failed.
	ErrStoreWrite = errors.New("store write failed")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the document ID is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrInvalidCollectionName indicates a collection name that breaks the naming rules.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// MissingFieldError reports a required field absent from the input schema.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// InvalidBatchSizeError reports a batch size below 1.
type InvalidBatchSizeError struct {
	Size int
}

func (e *InvalidBatchSizeError) Error() string {
	return fmt.Sprintf("%s: %d (must be at least 1)", ErrInvalidBatchSize, e.Size)
}

func (e *InvalidBatchSizeError) Unwrap() error {
	return ErrInvalidBatchSize
}

// StoreWriteError reports the failed write of one batch.
// Batch is 1-based. Batches before it remain persisted.
type StoreWriteError struct {
	Collection string
	Batch      int
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: collection %q, batch %d: %v", ErrStoreWrite, e.Collection, e.Batch, e.Err)
}

func (e *StoreWriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}
