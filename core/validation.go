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
	"fmt"
)

const (
	minCollectionNameLen = 3
	maxCollectionNameLen = 63
)

// ValidateBatchSize returns an *InvalidBatchSizeError when size < 1.
func ValidateBatchSize(size int) error {
	if size < 1 {
		return &InvalidBatchSizeError{Size: size}
	}
	return nil
}

// RequireFields returns a *MissingFieldError for the first of fields
// that is not part of the record set's schema.
func RequireFields(rs *RecordSet, fields ...string) error {
	for _, f := range fields {
		if !rs.HasField(f) {
			return &MissingFieldError{Field: f}
		}
	}
	return nil
}

// ValidateCollectionName validates a collection name.
//
// Validation rules:
//   - 3 to 63 characters
//   - only ASCII letters, digits, '.', '_' and '-'
//   - starts and ends with a letter or digit
func ValidateCollectionName(name string) error {
	if len(name) < minCollectionNameLen || len(name) > maxCollectionNameLen {
		return fmt.Errorf("%w: %q must be %d-%d characters", ErrInvalidCollectionName,
			name, minCollectionNameLen, maxCollectionNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlnum(c) {
			continue
		}
		if c == '.' || c == '_' || c == '-' {
			if i == 0 || i == len(name)-1 {
				return fmt.Errorf("%w: %q must start and end with a letter or digit", ErrInvalidCollectionName, name)
			}
			continue
		}
		return fmt.Errorf("%w: %q contains invalid character %q", ErrInvalidCollectionName, name, c)
	}
	return nil
}

// ValidateDocument validates a Document before it is stored.
//
// NOT validated:
//   - Content (an empty title is stored as an empty document)
//   - Vector (empty when no embedding function is configured)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}
	return nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
