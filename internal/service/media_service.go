package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"evermart/media-service/internal/cache"
	"evermart/media-service/internal/domain"
	"evermart/media-service/internal/repository"
	"evermart/media-service/internal/storage"

	"github.com/google/uuid"
)

// MediaConfig carries the namespace and policy settings for the media service.
type MediaConfig struct {
	MediaPrefix      string
	PublicBaseURL    string
	MaxSizeBytes     int64
	AllowedMimeTypes []string
}

// MediaService manages position-addressed asset slots: uploads into
// computed slots, the per-entity metadata aggregate, slot-addressed
// reads, and guarded deletes.
type MediaService interface {
	Upload(ctx context.Context, entityID, entityType, companyID string, files []UploadFile) ([]domain.Asset, error)
	ListByEntity(ctx context.Context, entityID string) ([]domain.Asset, error)
	FetchFile(ctx context.Context, storedName string) (io.ReadCloser, *storage.ObjectInfo, error)
	Delete(ctx context.Context, entityID string, position int, companyID string) error
	FileURL(storedName string) string
}

// mediaService implements the MediaService interface.
type mediaService struct {
	store         storage.ObjectStorage
	cache         *cache.AssetCache
	shadow        repository.AssetShadowRepository
	guard         ownershipGuard
	policy        uploadPolicy
	locks         *keyedMutex
	mediaPrefix   string
	publicBaseURL string
}

// NewMediaService creates a new instance of mediaService. The shadow
// repository may be nil, which disables shadow writes.
func NewMediaService(
	store storage.ObjectStorage,
	assetCache *cache.AssetCache,
	shadow repository.AssetShadowRepository,
	cfg MediaConfig,
) MediaService {
	return &mediaService{
		store:         store,
		cache:         assetCache,
		shadow:        shadow,
		guard:         ownershipGuard{cache: assetCache},
		policy:        newUploadPolicy(cfg.MaxSizeBytes, cfg.AllowedMimeTypes),
		locks:         newKeyedMutex(),
		mediaPrefix:   cfg.MediaPrefix,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// Upload writes each file into the slot derived from (entityId, index),
// records the descriptors in the cache and the shadow store, then folds
// them into the entity's aggregate. Positions are the zero-based indexes
// of the parts within this request; writing to an occupied slot replaces
// its binary and its aggregate entry.
func (s *mediaService) Upload(ctx context.Context, entityID, entityType, companyID string, files []UploadFile) ([]domain.Asset, error) {
	if entityID == "" || entityType == "" || companyID == "" {
		return nil, ErrMissingFields
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	// Validate the whole batch before any write.
	for _, f := range files {
		if err := s.policy.validate(f); err != nil {
			return nil, err
		}
	}

	// Serialize the read-merge-write cycle per entity so two concurrent
	// uploads cannot overwrite each other's aggregate entries.
	s.locks.Lock(entityID)
	defer s.locks.Unlock(entityID)

	created := make([]domain.Asset, 0, len(files))
	for i, f := range files {
		storedName := domain.SlotKey(entityID, i, domain.Extension(f.Name))
		if err := s.store.Put(ctx, s.mediaPrefix+storedName, f.MimeType, f.Body, f.Size); err != nil {
			return nil, fmt.Errorf("storing %q: %w", storedName, err)
		}

		asset := domain.Asset{
			ID:           uuid.NewString(),
			EntityID:     entityID,
			EntityType:   entityType,
			CompanyID:    companyID,
			StoredName:   storedName,
			OriginalName: f.Name,
			MimeType:     f.MimeType,
			SizeBytes:    f.Size,
			Position:     i,
			CreatedAt:    time.Now().UTC(),
		}
		s.cache.Set(cache.SlotCacheKey(entityID, i), asset)
		s.shadowUpsert(ctx, asset)
		created = append(created, asset)
	}

	existing := s.readAggregate(ctx, entityID)
	merged := domain.MergeAssets(existing, created)
	if err := s.writeAggregate(ctx, entityID, merged); err != nil {
		return nil, err
	}

	return created, nil
}

// ListByEntity returns the entity's aggregate, sorted by position.
// A missing aggregate reads as empty, not as an error. The cache is
// never consulted here; the aggregate is the authoritative listing.
func (s *mediaService) ListByEntity(ctx context.Context, entityID string) ([]domain.Asset, error) {
	if entityID == "" {
		return nil, ErrMissingFields
	}
	return s.readAggregate(ctx, entityID), nil
}

// FetchFile resolves a stored name directly against the binary store.
func (s *mediaService) FetchFile(ctx context.Context, storedName string) (io.ReadCloser, *storage.ObjectInfo, error) {
	rc, info, err := s.store.Get(ctx, s.mediaPrefix+storedName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrAssetNotFound
		}
		return nil, nil, err
	}
	return rc, info, nil
}

// Delete removes the binaries occupying a slot and its cache entry.
// The aggregate is not rewritten: the deleted position stays listed
// until the entity's next upload merges over it.
func (s *mediaService) Delete(ctx context.Context, entityID string, position int, companyID string) error {
	if entityID == "" || companyID == "" {
		return ErrMissingFields
	}
	if err := s.guard.authorize(entityID, position, companyID); err != nil {
		return err
	}

	slotPrefix := fmt.Sprintf("%s-%d", entityID, position)
	infos, err := s.store.List(ctx, s.mediaPrefix+slotPrefix)
	if err != nil {
		return err
	}
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, s.mediaPrefix)
		if !slotKeyMatches(name, slotPrefix) {
			continue
		}
		if err := s.store.Delete(ctx, info.Key); err != nil {
			return err
		}
	}

	s.cache.Delete(cache.SlotCacheKey(entityID, position))
	return nil
}

// FileURL derives the public retrieval URL for a stored name.
func (s *mediaService) FileURL(storedName string) string {
	return s.publicBaseURL + "/media/file/" + storedName
}

func (s *mediaService) aggregateKey(entityID string) string {
	return s.mediaPrefix + entityID + ".json"
}

// readAggregate loads the entity's metadata document. Missing and
// corrupted documents both degrade to an empty aggregate; corruption is
// logged because the next write will replace the unreadable history.
func (s *mediaService) readAggregate(ctx context.Context, entityID string) []domain.Asset {
	rc, _, err := s.store.Get(ctx, s.aggregateKey(entityID))
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("WARN: Failed to read aggregate for entity '%s': %v", entityID, err)
		}
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		log.Printf("WARN: Failed to read aggregate for entity '%s': %v", entityID, err)
		return nil
	}

	var assets []domain.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		log.Printf("WARN: Corrupted aggregate for entity '%s', proceeding with an empty base: %v", entityID, err)
		return nil
	}
	return assets
}

func (s *mediaService) writeAggregate(ctx context.Context, entityID string, assets []domain.Asset) error {
	data, err := json.Marshal(assets)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.aggregateKey(entityID), "application/json", strings.NewReader(string(data)), int64(len(data)))
}

// shadowUpsert mirrors a descriptor into the shadow store. Best effort:
// failures are logged and never fail the upload.
func (s *mediaService) shadowUpsert(ctx context.Context, asset domain.Asset) {
	if s.shadow == nil {
		return
	}
	if err := s.shadow.UpsertAsset(ctx, &asset); err != nil {
		log.Printf("WARN: Shadow-store write failed for '%s': %v", asset.StoredName, err)
	}
}
