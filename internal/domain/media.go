package domain

import "context"

// MediaKind discriminates the media variants returned by the platform
type MediaKind int

const (
	// MediaKindUnknown marks a media type this bot does not handle
	MediaKindUnknown MediaKind = iota

	// MediaKindPhoto is a single image
	MediaKindPhoto

	// MediaKindVideo is a single video (feed, igtv or clip)
	MediaKindVideo

	// MediaKindAlbum is a carousel of photos and/or videos
	MediaKindAlbum
)

// String returns the lowercase kind name.
func (k MediaKind) String() string {
	switch k {
	case MediaKindPhoto:
		return "photo"
	case MediaKindVideo:
		return "video"
	case MediaKindAlbum:
		return "album"
	default:
		return "unknown"
	}
}

// Video product types as reported by the platform.
const (
	ProductTypeFeed  = "feed"
	ProductTypeIGTV  = "igtv"
	ProductTypeClips = "clips"
)

// MediaItem is one piece of content fetched from a source account
type MediaItem struct {
	// ID is the platform identifier of the media
	ID string

	// Kind is the media variant
	Kind MediaKind

	// ProductType refines videos (feed, igtv, clips)
	ProductType string

	// Popularity is the ranking signal (like count)
	Popularity int64

	// CaptionText is the free-text caption of the media
	CaptionText string

	// Resources holds the sub-items of an album
	Resources []MediaItem
}

// Primary returns the first sub-item of an album, or the item itself.
// The second result is false for an album without resources.
func (m MediaItem) Primary() (MediaItem, bool) {
	if m.Kind != MediaKindAlbum {
		return m, true
	}
	if len(m.Resources) == 0 {
		return MediaItem{}, false
	}
	return m.Resources[0], true
}

// DedupKey is the identifier recorded in the usage ledger: the item id, or
// the primary sub-item id for albums.
func (m MediaItem) DedupKey() string {
	p, ok := m.Primary()
	if !ok {
		return m.ID
	}
	return p.ID
}

// Parts returns the downloadable units: album resources or the item itself.
func (m MediaItem) Parts() []MediaItem {
	if m.Kind == MediaKindAlbum {
		return m.Resources
	}
	return []MediaItem{m}
}

// PostType describes how a draft is published
type PostType string

const (
	PostTypePhoto PostType = "photo"
	PostTypeVideo PostType = "video"
	PostTypeAlbum PostType = "album"
)

// PostDraft is the unit handed to the upload collaborator
type PostDraft struct {
	Type    PostType
	Files   []string
	Caption string
}

// PostResult is the platform's answer to an upload
type PostResult struct {
	MediaID     string
	Code        string
	CaptionText string
}

// Succeeded reports whether the platform echoed a caption back.
func (r *PostResult) Succeeded() bool {
	return r != nil && r.CaptionText != ""
}

// PlatformClient is the remote platform used to read and publish media
type PlatformClient interface {
	// Login establishes an authenticated session
	Login(ctx context.Context, username, password string) error

	// ResolveAccountID maps a username to the platform user id
	ResolveAccountID(ctx context.Context, username string) (string, error)

	// ListMedia returns the media published by the user
	ListMedia(ctx context.Context, accountID string) ([]MediaItem, error)

	// DownloadMedia stores a photo or video into destFolder and returns the file path.
	// It returns ErrUnsupportedMedia for media it cannot fetch.
	DownloadMedia(ctx context.Context, item MediaItem, destFolder string) (string, error)

	// UploadSingle publishes one photo or video
	UploadSingle(ctx context.Context, filePath, caption string) (*PostResult, error)

	// UploadAlbum publishes several files as one carousel
	UploadAlbum(ctx context.Context, filePaths []string, caption string) (*PostResult, error)
}
