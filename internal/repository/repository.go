package repository

import (
	"context"

	"evermart/media-service/internal/domain"
)

// AssetShadowRepository mirrors successfully stored descriptors into a
// secondary durable store. It is write-only: nothing on the serving
// path reads it back, and a failed write must never fail the request
// that triggered it.
type AssetShadowRepository interface {
	// UpsertAsset records a slot descriptor, keyed by (entityId, position).
	UpsertAsset(ctx context.Context, asset *domain.Asset) error
	// UpsertLogo records a company's logo descriptor, keyed by companyId.
	UpsertLogo(ctx context.Context, asset *domain.Asset) error
}
