package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/kala/core"
)

// Every encoded collection and document starts with encodingVersion.
// Timestamps are stored as Unix microseconds in UTC.
const encodingVersion byte = 1

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalCollection serializes a Collection to bytes.
func MarshalCollection(c *core.Collection) []byte {
	buf := make([]byte, 1+collectionSize(c))
	buf[0] = encodingVersion
	n := 1 + varint.Uint64.Marshal(uint64(c.Id), buf[1:])
	n += ord.String.Marshal(c.UUID, buf[n:])
	n += ord.String.Marshal(c.Name, buf[n:])
	marshalTime(c.CreatedAt, buf[n:])
	return buf
}

// UnmarshalCollection deserializes a Collection from bytes.
func UnmarshalCollection(data []byte) (*core.Collection, error) {
	var c core.Collection
	d := decoder{data: data}
	d.readVersion()
	c.Id = core.ID(d.readUint64())
	c.UUID = d.readString()
	c.Name = d.readString()
	c.CreatedAt = d.readTime()
	if d.err != nil {
		return nil, fmt.Errorf("%w: collection at byte %d: %w", ErrSerializationFailed, d.n, d.err)
	}
	return &c, nil
}

// MarshalDocument serializes a Document to bytes.
// Metadata keys are written in sorted order so equal documents encode equally.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, 1+documentSize(doc))
	buf[0] = encodingVersion
	n := 1 + ord.String.Marshal(doc.ID, buf[1:])
	n += ord.String.Marshal(doc.Content, buf[n:])

	keys := sortedKeys(doc.Metadata)
	n += varint.Int.Marshal(len(keys), buf[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(doc.Metadata[k], buf[n:])
	}

	n += varint.Int.Marshal(len(doc.Vector), buf[n:])
	for _, f := range doc.Vector {
		n += raw.Float32.Marshal(f, buf[n:])
	}

	n += marshalTime(doc.InsertedAt, buf[n:])
	marshalTime(doc.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	var doc core.Document
	d := decoder{data: data}
	d.readVersion()
	doc.ID = d.readString()
	doc.Content = d.readString()

	if count := d.readLength(); count > 0 {
		doc.Metadata = make(core.Metadata, count)
		for i := 0; i < count && d.err == nil; i++ {
			k := d.readString()
			doc.Metadata[k] = d.readString()
		}
	}

	if dim := d.readLength(); dim > 0 {
		doc.Vector = make([]float32, dim)
		for i := 0; i < dim && d.err == nil; i++ {
			doc.Vector[i] = d.readFloat32()
		}
	}

	doc.InsertedAt = d.readTime()
	doc.UpdatedAt = d.readTime()
	if d.err != nil {
		return nil, fmt.Errorf("%w: document at byte %d: %w", ErrSerializationFailed, d.n, d.err)
	}
	return &doc, nil
}

func collectionSize(c *core.Collection) int {
	return varint.Uint64.Size(uint64(c.Id)) +
		ord.String.Size(c.UUID) +
		ord.String.Size(c.Name) +
		timeSize(c.CreatedAt)
}

func documentSize(doc *core.Document) int {
	size := ord.String.Size(doc.ID) + ord.String.Size(doc.Content)
	size += varint.Int.Size(len(doc.Metadata))
	for k, v := range doc.Metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	size += varint.Int.Size(len(doc.Vector))
	for _, f := range doc.Vector {
		size += raw.Float32.Size(f)
	}
	return size + timeSize(doc.InsertedAt) + timeSize(doc.UpdatedAt)
}

func marshalTime(t time.Time, buf []byte) int {
	return varint.Int64.Marshal(unixMicro(t), buf)
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(unixMicro(t))
}

// unixMicro maps the zero time to 0 so it survives a round trip.
func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func sortedKeys(m core.Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// decoder reads consecutive values and latches the first error.
type decoder struct {
	data []byte
	n    int
	err  error
}

func (d *decoder) readVersion() {
	if len(d.data) == 0 {
		d.err = ErrTruncatedData
		return
	}
	if v := d.data[0]; v != encodingVersion {
		d.err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		return
	}
	d.n = 1
}

func (d *decoder) readString() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.data[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) readUint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.data[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) readLength() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.data[d.n:])
	d.n += n
	d.err = err
	if err == nil && (v < 0 || v > len(d.data)-d.n) {
		// Every element takes at least one byte.
		d.err = ErrTruncatedData
		return 0
	}
	return v
}

func (d *decoder) readFloat32() float32 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(d.data[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) readTime() time.Time {
	if d.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(d.data[d.n:])
	d.n += n
	d.err = err
	if err != nil || v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
