package mongo

import (
	"context"
	"errors"
	"log"

	"evermart/media-service/internal/domain"
	"evermart/media-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assetCollectionName = "media_assets"

// mongoAssetRepository implements repository.AssetShadowRepository
type mongoAssetRepository struct {
	collection *mongo.Collection
}

// NewMongoAssetRepository creates the shadow-store repository backed by MongoDB.
func NewMongoAssetRepository(db *mongo.Database) repository.AssetShadowRepository {
	return &mongoAssetRepository{
		collection: db.Collection(assetCollectionName),
	}
}

// UpsertAsset writes the descriptor for a slot, replacing any previous
// document for the same (entityId, position). One document per slot
// mirrors the upsert-by-slot convention of the binary store.
func (r *mongoAssetRepository) UpsertAsset(ctx context.Context, asset *domain.Asset) error {
	if asset.EntityID == "" || asset.StoredName == "" {
		return errors.New("asset requires entityId and storedName")
	}

	filter := bson.M{"entityId": asset.EntityID, "position": asset.Position}

	_, err := r.collection.UpdateOne(ctx, filter, upsertUpdate(asset), options.Update().SetUpsert(true))
	return err
}

// UpsertLogo writes a company's logo descriptor, one document per company.
func (r *mongoAssetRepository) UpsertLogo(ctx context.Context, asset *domain.Asset) error {
	if asset.CompanyID == "" || asset.StoredName == "" {
		return errors.New("logo asset requires companyId and storedName")
	}

	filter := bson.M{"companyId": asset.CompanyID, "entityType": domain.EntityTypeCompanyLogo}

	_, err := r.collection.UpdateOne(ctx, filter, upsertUpdate(asset), options.Update().SetUpsert(true))
	return err
}

// upsertUpdate builds the update document for a descriptor upsert.
// The _id is only set on insert; replacing it on an existing document
// is rejected by MongoDB.
func upsertUpdate(asset *domain.Asset) bson.M {
	return bson.M{
		"$set": bson.M{
			"entityId":     asset.EntityID,
			"entityType":   asset.EntityType,
			"companyId":    asset.CompanyID,
			"storedName":   asset.StoredName,
			"originalName": asset.OriginalName,
			"mimeType":     asset.MimeType,
			"sizeBytes":    asset.SizeBytes,
			"position":     asset.Position,
			"createdAt":    asset.CreatedAt,
		},
		"$setOnInsert": bson.M{"_id": asset.ID},
	}
}

// EnsureAssetIndexes creates necessary indexes for the shadow collection.
func EnsureAssetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One document per slot
			Keys:    bson.D{{Key: "entityId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
		{
			// Lookup by owning tenant
			Keys:    bson.D{{Key: "companyId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
