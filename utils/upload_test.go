package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedImageFile(t *testing.T) {
	for _, name := range []string{"photo.png", "photo.jpg", "photo.jpeg", "anim.gif", "UPPER.PNG"} {
		assert.True(t, AllowedImageFile(name), name)
	}
	for _, name := range []string{"doc.pdf", "script.sh", "noext", "archive.tar.gz", ".png.exe"} {
		assert.False(t, AllowedImageFile(name), name)
	}
}

func TestBuildUploadNameNamespacing(t *testing.T) {
	name := BuildUploadName(42, "Holiday Photo.PNG")

	assert.True(t, strings.HasPrefix(name, "42_"), "stored name is namespaced by owner id")
	assert.True(t, strings.HasSuffix(name, ".png"), "extension survives, lowercased")
	assert.NotContains(t, name, "Holiday", "original base name is discarded")
	assert.NotContains(t, name, "/")
}

func TestBuildUploadNameIsCollisionFree(t *testing.T) {
	a := BuildUploadName(1, "a.png")
	b := BuildUploadName(1, "a.png")
	assert.NotEqual(t, a, b)
}
