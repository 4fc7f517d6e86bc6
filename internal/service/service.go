// Package service implements the business operations behind the HTTP API.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"
	"github.com/andriinero/inkspace-backend/internal/storage"
)

// nowUTC is replaced in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }

// AdminChecker reports whether userID holds the admin role.
type AdminChecker func(ctx context.Context, userID uint) (bool, error)

// authorizeOwner allows the owner and admins.
func authorizeOwner(ctx context.Context, isAdmin AdminChecker, actorID, ownerID uint, message string) error {
	if actorID != 0 && actorID == ownerID {
		return nil
	}
	return requireAdmin(ctx, isAdmin, actorID, message)
}

func requireAdmin(ctx context.Context, isAdmin AdminChecker, actorID uint, message string) error {
	if isAdmin != nil && actorID != 0 {
		ok, err := isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return models.NewForbiddenError(message)
}

const blobCleanupTimeout = 10 * time.Second

// deleteImageBlobs removes the blobs of imgs once their rows are gone. It
// runs detached from the request deadline and logs failures instead of
// returning them; every delete is idempotent.
func deleteImageBlobs(ctx context.Context, blobs storage.BlobStore, imgs ...models.Image) {
	if blobs == nil || len(imgs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blobCleanupTimeout)
	defer cancel()

	for i := range imgs {
		for _, key := range imgs[i].BlobKeys() {
			if err := blobs.Delete(ctx, key); err != nil {
				observability.Logger.WarnContext(ctx, "blob delete failed",
					slog.String("backend", blobs.Backend()),
					slog.String("key", key),
					slog.Uint64("image_id", uint64(imgs[i].ID)),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
