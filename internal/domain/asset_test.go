package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "E1-0.png", SlotKey("E1", 0, ".png"))
	assert.Equal(t, "E1-17.jpeg", SlotKey("E1", 17, ".jpeg"))
	assert.Equal(t, "E1-3", SlotKey("E1", 3, ""))
}

func TestSlotKeyIsDeterministic(t *testing.T) {
	// Same slot, same key: the collision is the upsert mechanism.
	assert.Equal(t, SlotKey("prod-9", 2, ".webp"), SlotKey("prod-9", 2, ".webp"))
}

func TestLogoSlotKey(t *testing.T) {
	assert.Equal(t, "logo-C1.png", LogoSlotKey("C1", ".png"))
	assert.Equal(t, "logo-C1", LogoSlotKey("C1", ""))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("photo.png"))
	assert.Equal(t, ".png", Extension("PHOTO.PNG"))
	assert.Equal(t, ".gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("noextension"))
	assert.Equal(t, ".", Extension("trailingdot."))
}
