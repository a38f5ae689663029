package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// EntityTypeCompanyLogo marks descriptors living in the logo namespace,
// which is keyed by company rather than by (entity, position).
const EntityTypeCompanyLogo = "company-logo"

// Asset stores metadata about one uploaded binary. The binary itself
// resides in object storage under StoredName inside its namespace prefix.
type Asset struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	EntityID     string    `bson:"entityId" json:"entityId"`
	EntityType   string    `bson:"entityType" json:"entityType"`
	CompanyID    string    `bson:"companyId" json:"companyId"`
	StoredName   string    `bson:"storedName" json:"storedName"`
	OriginalName string    `bson:"originalName" json:"originalName"`
	MimeType     string    `bson:"mimeType" json:"mimeType"`
	SizeBytes    int64     `bson:"sizeBytes" json:"sizeBytes"`
	Position     int       `bson:"position" json:"position"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// SlotKey derives the storage name for an entity slot. Two descriptors
// with the same entity and position map to the same key on purpose:
// writing the second one replaces the binary at that slot.
func SlotKey(entityID string, position int, extension string) string {
	return fmt.Sprintf("%s-%d%s", entityID, position, extension)
}

// LogoSlotKey derives the storage name for a company's single logo slot.
func LogoSlotKey(companyID, extension string) string {
	return fmt.Sprintf("logo-%s%s", companyID, extension)
}

// Extension returns the lower-cased extension of an untrusted original
// filename, including the leading dot, or "" when there is none.
func Extension(originalName string) string {
	return strings.ToLower(path.Ext(originalName))
}
