package core

import (
	"math"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "collection name", content: "products"},
		{name: "empty string", content: ""},
		{name: "persian content", content: "گوشی موبایل سامسونگ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("products") == IDFromContent("products2") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestRecord_Metadata(t *testing.T) {
	r := Record{ID: "1", Title: "x", Category: "cat", SubCategory: "sub"}
	md := r.Metadata()

	if len(md) != 2 {
		t.Fatalf("Metadata() has %d keys, want 2", len(md))
	}
	if md[FieldCategory] != "cat" {
		t.Errorf("Metadata()[%q] = %q, want %q", FieldCategory, md[FieldCategory], "cat")
	}
	if md[FieldSubCategory] != "sub" {
		t.Errorf("Metadata()[%q] = %q, want %q", FieldSubCategory, md[FieldSubCategory], "sub")
	}
}

func TestRecordSet_HasField(t *testing.T) {
	rs := &RecordSet{Fields: []string{FieldID, FieldTitle}}

	if !rs.HasField(FieldID) {
		t.Errorf("HasField(%q) = false, want true", FieldID)
	}
	if rs.HasField(FieldCategory) {
		t.Errorf("HasField(%q) = true, want false", FieldCategory)
	}

	var nilSet *RecordSet
	if nilSet.HasField(FieldID) {
		t.Errorf("nil RecordSet HasField() = true, want false")
	}
	if nilSet.Len() != 0 {
		t.Errorf("nil RecordSet Len() = %d, want 0", nilSet.Len())
	}
}

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{name: "empty", in: []float32{}, want: []float32{}},
		{name: "already unit", in: []float32{1, 0, 0}, want: []float32{1, 0, 0}},
		{name: "scaled", in: []float32{1, 2, 2}, want: []float32{1.0 / 3, 2.0 / 3, 2.0 / 3}},
		{name: "zero vector", in: []float32{0, 0}, want: []float32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVector(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeVector() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("NormalizeVector()[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDotProduct(t *testing.T) {
	if got := DotProduct([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("DotProduct() = %f, want 32", got)
	}
	// Mismatched lengths use the common prefix
	if got := DotProduct([]float32{1, 2, 3}, []float32{1}); got != 1 {
		t.Errorf("DotProduct() = %f, want 1", got)
	}
}
