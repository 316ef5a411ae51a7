package badger

import (
	"encoding/binary"

	"github.com/poiesic/kala/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "colrec"
	documentPrefix   = "coldoc"
)

// makeCollectionKey generates a key for a collection descriptor by name.
// Format: prefix:name
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + ":" + name)
}

// makeCollectionScanPrefix returns the prefix shared by all collection keys.
func makeCollectionScanPrefix() []byte {
	return []byte(collectionPrefix + ":")
}

// makeDocumentPrefix generates the prefix shared by all documents of a collection.
// Format: prefix:<collectionID>
func makeDocumentPrefix(collectionID core.ID) []byte {
	prefix := documentPrefix + ":"
	buf := make([]byte, len(prefix)+8) // 8 bytes for collectionID
	offset := copy(buf, prefix)
	// Fixed width, so no collection prefix is a prefix of another
	binary.BigEndian.PutUint64(buf[offset:], uint64(collectionID))
	return buf
}

// makeDocumentKey generates a composite key for a document.
// Format: prefix:<collectionID><documentID>
func makeDocumentKey(collectionID core.ID, documentID string) []byte {
	prefix := makeDocumentPrefix(collectionID)
	buf := make([]byte, len(prefix)+len(documentID))
	offset := copy(buf, prefix)
	copy(buf[offset:], documentID)
	return buf
}
