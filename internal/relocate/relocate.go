// Package relocate moves stored objects out of the received partition into
// their terminal partition. A move is copy-then-delete: the destination copy
// is authoritative the moment it exists.
package relocate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

// Engine performs object relocation against the store interface.
type Engine struct {
	store     storage.ObjectStore
	uriScheme string
	logger    *slog.Logger
}

func NewEngine(store storage.ObjectStore, uriScheme string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if uriScheme == "" {
		uriScheme = "gs"
	}
	return &Engine{store: store, uriScheme: uriScheme, logger: logger}
}

// Relocate moves obj into the destination partition, preserving the key
// suffix. If the copy fails, the original stays where it is and the move
// fails. If the copy succeeds but the delete fails, the object briefly exists
// twice; the destination copy is authoritative, so this is logged as an
// anomaly and still counts as success.
func (e *Engine) Relocate(ctx context.Context, obj storage.StoredObject, destination constants.Partition) (storage.StoredObject, error) {
	dstKey := string(destination) + "/" + keySuffix(obj.Key)

	if err := e.store.Copy(ctx, obj.Bucket, obj.Key, dstKey); err != nil {
		e.logger.Error("relocate.copy_failed", "bucket", obj.Bucket, "src", obj.Key, "dst", dstKey, "error", err)
		return storage.StoredObject{}, fmt.Errorf("%w: copy %s -> %s: %v", common.ErrRelocationFailed, obj.Key, dstKey, err)
	}

	if err := e.store.Delete(ctx, obj.Bucket, obj.Key); err != nil {
		// Duplicate storage, not data loss. TODO: sweep leftover received/
		// objects with a scheduled reconcile job.
		e.logger.Warn("relocate.anomaly.duplicate_object",
			"bucket", obj.Bucket, "src", obj.Key, "dst", dstKey, "error", err)
	}

	moved := storage.StoredObject{Bucket: obj.Bucket, Key: dstKey}
	e.logger.Info("relocate.ok", "bucket", obj.Bucket, "src", obj.Key, "dst", dstKey, "partition", string(destination))
	return moved, nil
}

// Location renders the full storage URI for a stored object.
func (e *Engine) Location(obj storage.StoredObject) string {
	return fmt.Sprintf("%s://%s/%s", e.uriScheme, obj.Bucket, obj.Key)
}

// keySuffix strips the partition prefix from a key, leaving the unique
// object name.
func keySuffix(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}
