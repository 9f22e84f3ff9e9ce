package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auto_repost_instagram/internal/domain"
)

func photo(id string, popularity int64) domain.MediaItem {
	return domain.MediaItem{ID: id, Kind: domain.MediaKindPhoto, Popularity: popularity}
}

func ids(items []domain.MediaItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestRankCandidates_TopByPopularity(t *testing.T) {
	media := []domain.MediaItem{photo("1", 5), photo("2", 9), photo("3", 1)}

	selection := RankCandidates(media, nil, RankOptions{TopMediaCount: 2})

	assert.Equal(t, []string{"2", "1"}, ids(selection.Items))
	assert.Equal(t, domain.PostTypeAlbum, selection.Type)
}

func TestRankCandidates_StableForEqualPopularity(t *testing.T) {
	media := []domain.MediaItem{photo("a", 3), photo("b", 7), photo("c", 3), photo("d", 3)}

	selection := RankCandidates(media, nil, RankOptions{TopMediaCount: 4})

	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(selection.Items))
}

func TestRankCandidates_SkipsUsedMedia(t *testing.T) {
	album := domain.MediaItem{ID: "album", Kind: domain.MediaKindAlbum, Popularity: 100, Resources: []domain.MediaItem{
		{ID: "album-0", Kind: domain.MediaKindPhoto},
		{ID: "album-1", Kind: domain.MediaKindPhoto},
	}}
	media := []domain.MediaItem{album, photo("1", 50), photo("2", 10)}
	used := map[string]struct{}{"album-0": {}, "1": {}}

	selection := RankCandidates(media, used, RankOptions{TopMediaCount: 3})

	assert.Equal(t, []string{"2"}, ids(selection.Items))
	assert.Equal(t, domain.PostTypePhoto, selection.Type)
}

func TestRankCandidates_Eligibility(t *testing.T) {
	videoAlbum := domain.MediaItem{ID: "va", Kind: domain.MediaKindAlbum, Popularity: 90, Resources: []domain.MediaItem{
		{ID: "va-0", Kind: domain.MediaKindVideo},
	}}
	photoAlbum := domain.MediaItem{ID: "pa", Kind: domain.MediaKindAlbum, Popularity: 80, Resources: []domain.MediaItem{
		{ID: "pa-0", Kind: domain.MediaKindPhoto},
		{ID: "pa-1", Kind: domain.MediaKindVideo},
	}}
	media := []domain.MediaItem{
		{ID: "v", Kind: domain.MediaKindVideo, ProductType: domain.ProductTypeClips, Popularity: 100},
		videoAlbum,
		photoAlbum,
		{ID: "u", Kind: domain.MediaKindUnknown, Popularity: 70},
		{ID: "empty", Kind: domain.MediaKindAlbum, Popularity: 60},
		photo("p", 50),
	}

	selection := RankCandidates(media, nil, RankOptions{TopMediaCount: 5})

	assert.Equal(t, []string{"pa", "p"}, ids(selection.Items))
	assert.Equal(t, domain.PostTypeAlbum, selection.Type)
}

func TestRankCandidates_VideoPostsAlone(t *testing.T) {
	video := domain.MediaItem{ID: "v", Kind: domain.MediaKindVideo, ProductType: domain.ProductTypeFeed, Popularity: 100}

	t.Run("video ranked first becomes a solo post", func(t *testing.T) {
		selection := RankCandidates([]domain.MediaItem{photo("p", 10), video}, nil, RankOptions{TopMediaCount: 3, AcceptVideo: true})

		assert.Equal(t, domain.PostTypeVideo, selection.Type)
		assert.Equal(t, []string{"v"}, ids(selection.Items))
	})

	t.Run("video after photos is left for a later run", func(t *testing.T) {
		later := video
		later.Popularity = 1
		selection := RankCandidates([]domain.MediaItem{photo("p", 10), later, photo("q", 0)}, nil, RankOptions{TopMediaCount: 3, AcceptVideo: true})

		assert.Equal(t, []string{"p", "q"}, ids(selection.Items))
	})

	t.Run("unsupported product type is ignored", func(t *testing.T) {
		odd := video
		odd.ProductType = "story"
		selection := RankCandidates([]domain.MediaItem{odd}, nil, RankOptions{AcceptVideo: true})

		assert.True(t, selection.Empty())
	})
}

func TestRankCandidates_EmptyInputs(t *testing.T) {
	assert.True(t, RankCandidates(nil, nil, RankOptions{}).Empty())

	used := map[string]struct{}{"1": {}}
	assert.True(t, RankCandidates([]domain.MediaItem{photo("1", 1)}, used, RankOptions{}).Empty())
}

func TestRankCandidates_DefaultLimit(t *testing.T) {
	media := []domain.MediaItem{photo("1", 1), photo("2", 2), photo("3", 3), photo("4", 4)}

	selection := RankCandidates(media, nil, RankOptions{})

	assert.Equal(t, []string{"4", "3", "2"}, ids(selection.Items))
}

func TestPopularityQueue_StableAndNonMutating(t *testing.T) {
	media := []domain.MediaItem{photo("1", 1), photo("2", 7), photo("3", 7), photo("4", 3), photo("5", 7)}

	queue := newPopularityQueue(media)
	var order []string
	for {
		item, ok := queue.next()
		if !ok {
			break
		}
		order = append(order, item.ID)
	}

	assert.Equal(t, []string{"2", "3", "5", "4", "1"}, order)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(media))
}
