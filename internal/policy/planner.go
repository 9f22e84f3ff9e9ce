package policy

import (
	"math/rand/v2"

	"auto_repost_instagram/internal/domain"
)

// Plan is everything needed to materialize and publish one post.
type Plan struct {
	Type        domain.PostType
	Items       []domain.MediaItem
	Hashtags    []string
	Attribution string
}

// MediaIDs returns the ledger keys of the planned items.
func (p Plan) MediaIDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.DedupKey())
	}
	return ids
}

// Planner composes ranking and hashtag aggregation for one source account.
type Planner struct {
	TopMediaCount int
	TopTagCount   int
	AcceptVideo   bool
	HashtagPool   []string
	Rand          *rand.Rand
}

// Plan selects the next unused batch for the account. It returns false when
// nothing is left to post.
func (p *Planner) Plan(account *domain.SourceAccount, media []domain.MediaItem) (Plan, bool) {
	if len(media) == 0 {
		return Plan{}, false
	}

	selection := RankCandidates(media, account.UsedMediaSet(), RankOptions{
		TopMediaCount: p.TopMediaCount,
		AcceptVideo:   p.AcceptVideo,
	})
	if selection.Empty() {
		return Plan{}, false
	}

	topTags := p.TopTagCount
	if topTags <= 0 {
		topTags = DefaultTopTagCount
	}

	plan := Plan{
		Type:     selection.Type,
		Items:    selection.Items,
		Hashtags: RankHashtags(selection.Items, topTags, p.HashtagPool, p.Rand),
	}
	for _, item := range selection.Items {
		if handle, ok := ExtractAttribution(item.CaptionText); ok {
			plan.Attribution = handle
			break
		}
	}
	return plan, true
}
