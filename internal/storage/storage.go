package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// PlanArchive defines the interface for archiving raw plan document blobs.
// Archived documents exist for traceability and debugging only; the engine
// never reads them back.
type PlanArchive interface {
	// StoreDocument uploads the raw document blob for a plan and returns the
	// object key it was stored under.
	StoreDocument(ctx context.Context, planID string, document []byte) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for an archived document directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteDocument removes an archived document.
	DeleteDocument(ctx context.Context, objectKey string) error
}
