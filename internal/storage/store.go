package storage

import "context"

// StoredObject locates one blob in the object store. A given upload owns at
// most one StoredObject at a time; relocation replaces the key rather than
// duplicating the object.
type StoredObject struct {
	Bucket string
	Key    string
}

// ObjectStore is the consumed capability interface over the physical store.
// Every call is synchronous and fallible; adapters enforce a timeout on each
// call so a hung backend surfaces as an ordinary error.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte) error
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
}
