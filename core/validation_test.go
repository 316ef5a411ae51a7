package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateBatchSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "one", size: 1},
		{name: "large", size: 10000},
		{name: "zero", size: 0, wantErr: true},
		{name: "negative", size: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchSize(tt.size)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("ValidateBatchSize(%d) error = %v, want nil", tt.size, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidBatchSize) {
				t.Fatalf("ValidateBatchSize(%d) error = %v, want %v", tt.size, err, ErrInvalidBatchSize)
			}
			var sizeErr *InvalidBatchSizeError
			if !errors.As(err, &sizeErr) || sizeErr.Size != tt.size {
				t.Errorf("ValidateBatchSize(%d) error = %#v, want InvalidBatchSizeError{Size: %d}", tt.size, err, tt.size)
			}
		})
	}
}

func TestRequireFields(t *testing.T) {
	rs := &RecordSet{Fields: []string{FieldID, FieldTitle, FieldCategory}}

	if err := RequireFields(rs, FieldID, FieldTitle, FieldCategory); err != nil {
		t.Errorf("RequireFields() error = %v, want nil", err)
	}

	err := RequireFields(rs, FieldID, FieldSubCategory, "other")
	var fieldErr *MissingFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("RequireFields() error = %v, want *MissingFieldError", err)
	}
	if fieldErr.Field != FieldSubCategory {
		t.Errorf("MissingFieldError.Field = %q, want %q", fieldErr.Field, FieldSubCategory)
	}
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("RequireFields() error does not match ErrMissingField")
	}
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		wantErr    bool
	}{
		{name: "simple", collection: "products"},
		{name: "with separators", collection: "digikala.products_v2-fa"},
		{name: "minimum length", collection: "abc"},
		{name: "maximum length", collection: strings.Repeat("a", 63)},
		{name: "too short", collection: "ab", wantErr: true},
		{name: "too long", collection: strings.Repeat("a", 64), wantErr: true},
		{name: "leading separator", collection: "_products", wantErr: true},
		{name: "trailing separator", collection: "products.", wantErr: true},
		{name: "space", collection: "my products", wantErr: true},
		{name: "non ascii", collection: "محصولات", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.collection)
			if tt.wantErr && !errors.Is(err, ErrInvalidCollectionName) {
				t.Errorf("ValidateCollectionName(%q) error = %v, want %v", tt.collection, err, ErrInvalidCollectionName)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateCollectionName(%q) error = %v, want nil", tt.collection, err)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	if err := ValidateDocument(&Document{ID: "1"}); err != nil {
		t.Errorf("ValidateDocument() error = %v, want nil", err)
	}
	if err := ValidateDocument(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("ValidateDocument(nil) error = %v, want %v", err, ErrInvalidDocument)
	}
	if err := ValidateDocument(&Document{}); !errors.Is(err, ErrEmptyDocumentID) {
		t.Errorf("ValidateDocument(empty id) error = %v, want %v", err, ErrEmptyDocumentID)
	}
}

func TestStoreWriteError(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &StoreWriteError{Collection: "products", Batch: 2, Err: cause}

	if !errors.Is(err, ErrStoreWrite) {
		t.Errorf("StoreWriteError does not match ErrStoreWrite")
	}
	if !errors.Is(err, cause) {
		t.Errorf("StoreWriteError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "batch 2") {
		t.Errorf("StoreWriteError message %q does not name the batch", err.Error())
	}
}
