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

// LogoConfig carries the namespace and policy settings for the logo service.
type LogoConfig struct {
	LogoPrefix       string
	PublicBaseURL    string
	MaxSizeBytes     int64
	AllowedMimeTypes []string
}

// LogoService manages the single logo slot each company owns. Every
// upload replaces whatever occupied the slot; no delete is exposed.
type LogoService interface {
	Replace(ctx context.Context, companyID string, file UploadFile) (*domain.Asset, error)
	Fetch(ctx context.Context, companyID string) (io.ReadCloser, *storage.ObjectInfo, error)
	Metadata(ctx context.Context, companyID string) (*domain.Asset, error)
	FileURL(companyID string) string
}

// logoService implements the LogoService interface.
type logoService struct {
	store         storage.ObjectStorage
	cache         *cache.AssetCache
	shadow        repository.AssetShadowRepository
	policy        uploadPolicy
	locks         *keyedMutex
	logoPrefix    string
	publicBaseURL string
}

// NewLogoService creates a new instance of logoService. The shadow
// repository may be nil, which disables shadow writes.
func NewLogoService(
	store storage.ObjectStorage,
	assetCache *cache.AssetCache,
	shadow repository.AssetShadowRepository,
	cfg LogoConfig,
) LogoService {
	return &logoService{
		store:         store,
		cache:         assetCache,
		shadow:        shadow,
		policy:        newUploadPolicy(cfg.MaxSizeBytes, cfg.AllowedMimeTypes),
		locks:         newKeyedMutex(),
		logoPrefix:    cfg.LogoPrefix,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// Replace runs the single-slot replacement protocol: stage the incoming
// bytes under a unique key that cannot collide, drop every object
// currently matching the company's slot, then promote the staging
// object to the canonical key. The company's metadata document and
// cache entry are rewritten to describe the new binary.
func (s *logoService) Replace(ctx context.Context, companyID string, file UploadFile) (*domain.Asset, error) {
	if companyID == "" {
		return nil, ErrMissingFields
	}
	if err := s.policy.validate(file); err != nil {
		return nil, err
	}

	// Single writer per company: list, delete and promote act as one
	// step within this process.
	s.locks.Lock(companyID)
	defer s.locks.Unlock(companyID)

	ext := domain.Extension(file.Name)
	stagingKey := s.logoPrefix + "staging-" + uuid.NewString() + ext
	if err := s.store.Put(ctx, stagingKey, file.MimeType, file.Body, file.Size); err != nil {
		return nil, fmt.Errorf("staging logo: %w", err)
	}

	// Drop every object currently occupying the slot, whatever its
	// extension was.
	slotPrefix := domain.LogoSlotKey(companyID, "")
	infos, err := s.store.List(ctx, s.logoPrefix+slotPrefix)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, s.logoPrefix)
		if !slotKeyMatches(name, slotPrefix) {
			continue
		}
		if err := s.store.Delete(ctx, info.Key); err != nil {
			return nil, err
		}
	}

	storedName := domain.LogoSlotKey(companyID, ext)
	if err := s.store.Copy(ctx, stagingKey, s.logoPrefix+storedName); err != nil {
		return nil, fmt.Errorf("promoting staged logo: %w", err)
	}
	if err := s.store.Delete(ctx, stagingKey); err != nil {
		log.Printf("WARN: Failed to remove staging object '%s': %v", stagingKey, err)
	}

	asset := domain.Asset{
		ID:           uuid.NewString(),
		EntityID:     companyID,
		EntityType:   domain.EntityTypeCompanyLogo,
		CompanyID:    companyID,
		StoredName:   storedName,
		OriginalName: file.Name,
		MimeType:     file.MimeType,
		SizeBytes:    file.Size,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.writeMetadata(ctx, companyID, asset); err != nil {
		return nil, err
	}
	s.cache.Set(cache.LogoCacheKey(companyID), asset)
	if s.shadow != nil {
		if err := s.shadow.UpsertLogo(ctx, &asset); err != nil {
			log.Printf("WARN: Shadow-store write failed for logo of company '%s': %v", companyID, err)
		}
	}

	return &asset, nil
}

// Fetch opens the company's current logo binary. When a race left more
// than one object in the slot, the most recently modified one wins.
func (s *logoService) Fetch(ctx context.Context, companyID string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if companyID == "" {
		return nil, nil, ErrMissingFields
	}

	key, err := s.currentKey(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrLogoNotFound
		}
		return nil, nil, err
	}
	return rc, info, nil
}

// Metadata returns the stored descriptor for the company's logo,
// preferring the warm cache entry over the metadata document.
func (s *logoService) Metadata(ctx context.Context, companyID string) (*domain.Asset, error) {
	if companyID == "" {
		return nil, ErrMissingFields
	}

	if asset, ok := s.cache.Get(cache.LogoCacheKey(companyID)); ok {
		return &asset, nil
	}

	rc, _, err := s.store.Get(ctx, s.metadataKey(companyID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrLogoNotFound
		}
		return nil, err
	}
	defer rc.Close()

	var asset domain.Asset
	if err := json.NewDecoder(rc).Decode(&asset); err != nil {
		return nil, fmt.Errorf("decoding logo metadata for company %q: %w", companyID, err)
	}
	return &asset, nil
}

// FileURL derives the public retrieval URL for a company's logo.
func (s *logoService) FileURL(companyID string) string {
	return s.publicBaseURL + "/media/company-logo/file/" + companyID
}

// currentKey lists the slot and picks the surviving object. More than
// one match means a replacement race left transient duplicates; the
// tie-break is recency of modification.
func (s *logoService) currentKey(ctx context.Context, companyID string) (string, error) {
	slotPrefix := domain.LogoSlotKey(companyID, "")
	infos, err := s.store.List(ctx, s.logoPrefix+slotPrefix)
	if err != nil {
		return "", err
	}

	var current *storage.ObjectInfo
	for i := range infos {
		name := strings.TrimPrefix(infos[i].Key, s.logoPrefix)
		if !slotKeyMatches(name, slotPrefix) {
			continue
		}
		if current == nil || infos[i].LastModified.After(current.LastModified) {
			current = &infos[i]
		}
	}
	if current == nil {
		return "", ErrLogoNotFound
	}
	return current.Key, nil
}

func (s *logoService) metadataKey(companyID string) string {
	return s.logoPrefix + companyID + ".json"
}

func (s *logoService) writeMetadata(ctx context.Context, companyID string, asset domain.Asset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.metadataKey(companyID), "application/json", strings.NewReader(string(data)), int64(len(data)))
}
