package service

import (
	"errors"
	"io"
	"strings"
)

// --- Error Definitions ---
var (
	ErrMissingFields        = errors.New("required fields are missing")
	ErrNoFiles              = errors.New("no files provided")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file exceeds the maximum upload size")
	ErrOwnershipMismatch    = errors.New("asset belongs to a different company")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrLogoNotFound         = errors.New("company logo not found")
)

// UploadFile carries one incoming binary part.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// uploadPolicy validates incoming files before anything is written.
// Validation failures are detected up front so a rejected batch leaves
// no partial state behind.
type uploadPolicy struct {
	maxSizeBytes int64
	allowedTypes map[string]bool
}

func newUploadPolicy(maxSizeBytes int64, allowedMimeTypes []string) uploadPolicy {
	allowed := make(map[string]bool, len(allowedMimeTypes))
	for _, t := range allowedMimeTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return uploadPolicy{maxSizeBytes: maxSizeBytes, allowedTypes: allowed}
}

func (p uploadPolicy) validate(f UploadFile) error {
	if f.Body == nil {
		return ErrNoFiles
	}
	if p.maxSizeBytes > 0 && f.Size > p.maxSizeBytes {
		return ErrFileTooLarge
	}
	// An empty allowlist admits everything.
	if len(p.allowedTypes) == 0 {
		return nil
	}
	mt := strings.ToLower(strings.TrimSpace(f.MimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if !p.allowedTypes[mt] {
		return ErrUnsupportedMediaType
	}
	return nil
}

// slotKeyMatches reports whether a storage name belongs to the slot
// identified by slotPrefix. A bare prefix scan would also catch
// neighbouring slots ("E1-1" matches "E1-10.png"), so the remainder
// must be empty or an extension.
func slotKeyMatches(name, slotPrefix string) bool {
	if !strings.HasPrefix(name, slotPrefix) {
		return false
	}
	rest := name[len(slotPrefix):]
	return rest == "" || strings.HasPrefix(rest, ".")
}
