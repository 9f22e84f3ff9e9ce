package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_repost_instagram/internal/domain"
)

func TestPlanner_HashtagsComeFromTheBatchOnly(t *testing.T) {
	planner := &Planner{TopMediaCount: 1, TopTagCount: 5}
	media := []domain.MediaItem{
		{ID: "hi", Kind: domain.MediaKindPhoto, Popularity: 9, CaptionText: "#top Model: @jane"},
		{ID: "lo", Kind: domain.MediaKindPhoto, Popularity: 1, CaptionText: "#low Model: @john"},
	}

	plan, ok := planner.Plan(&domain.SourceAccount{Username: "src"}, media)

	require.True(t, ok)
	assert.Equal(t, []string{"top"}, plan.Hashtags)
	assert.Equal(t, "jane", plan.Attribution)
	assert.Equal(t, []string{"hi"}, plan.MediaIDs())
	assert.Equal(t, domain.PostTypePhoto, plan.Type)
}

func TestPlanner_UsedMediaNeverReturned(t *testing.T) {
	planner := &Planner{TopMediaCount: 2, TopTagCount: 3, HashtagPool: []string{"pad"}}
	album := domain.MediaItem{ID: "al", Kind: domain.MediaKindAlbum, Popularity: 5, Resources: []domain.MediaItem{
		{ID: "al-0", Kind: domain.MediaKindPhoto},
	}}
	media := []domain.MediaItem{album, {ID: "p", Kind: domain.MediaKindPhoto, Popularity: 4}}
	account := &domain.SourceAccount{Username: "src"}

	plan, ok := planner.Plan(account, media)
	require.True(t, ok)
	assert.Equal(t, []string{"al-0", "p"}, plan.MediaIDs())
	assert.Equal(t, []string{"pad"}, plan.Hashtags)

	account.ApplyUsage(domain.Usage{MediaIDs: plan.MediaIDs(), Hashtags: plan.Hashtags})

	_, ok = planner.Plan(account, media)
	assert.False(t, ok)
}

func TestPlanner_EmptyCatalog(t *testing.T) {
	planner := &Planner{}

	_, ok := planner.Plan(&domain.SourceAccount{}, nil)
	assert.False(t, ok)
}
