// Package kala loads product catalogues into persistent collections.
//
// A Database opens a BadgerDB-backed collection store together with the
// text normalizer and the optional embedder used to fill it:
//
//	db, err := kala.NewDatabase("kala_storage")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	result, err := db.IngestFile(ctx, "products.csv", "products", 500, nil,
//	    ingestion.WithProgress(os.Stderr))
//
// Ingestion drops records whose id was already seen in the file, normalizes
// titles and categories, and writes the records in batches. See the
// ingestion package for the failure semantics.
package kala
