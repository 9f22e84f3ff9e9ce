package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaItem_DedupKey(t *testing.T) {
	photo := MediaItem{ID: "p1", Kind: MediaKindPhoto}
	album := MediaItem{ID: "a1", Kind: MediaKindAlbum, Resources: []MediaItem{
		{ID: "r1", Kind: MediaKindPhoto},
		{ID: "r2", Kind: MediaKindVideo},
	}}
	emptyAlbum := MediaItem{ID: "a2", Kind: MediaKindAlbum}

	assert.Equal(t, "p1", photo.DedupKey())
	assert.Equal(t, "r1", album.DedupKey())
	assert.Equal(t, "a2", emptyAlbum.DedupKey())

	_, ok := emptyAlbum.Primary()
	assert.False(t, ok)
	assert.Len(t, album.Parts(), 2)
	assert.Equal(t, []MediaItem{photo}, photo.Parts())
}

func TestPostResult_Succeeded(t *testing.T) {
	var nilResult *PostResult
	assert.False(t, nilResult.Succeeded())
	assert.False(t, (&PostResult{MediaID: "1"}).Succeeded())
	assert.True(t, (&PostResult{CaptionText: "Follow @me"}).Succeeded())
}

func TestMediaKind_String(t *testing.T) {
	assert.Equal(t, "photo", MediaKindPhoto.String())
	assert.Equal(t, "video", MediaKindVideo.String())
	assert.Equal(t, "album", MediaKindAlbum.String())
	assert.Equal(t, "unknown", MediaKind(42).String())
}
