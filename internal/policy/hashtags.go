package policy

import (
	"math/rand/v2"
	"sort"
	"strings"

	"auto_repost_instagram/internal/domain"
)

// DefaultTopTagCount is the number of hashtags placed in a caption.
const DefaultTopTagCount = 30

// ExtractHashtags returns the hashtags in text without the leading '#',
// deduplicated in first-seen order. Adjacent tags such as "#a#b" are split.
// Case is kept as written: "Sun" and "sun" are different tags.
func ExtractHashtags(text string) []string {
	spaced := strings.ReplaceAll(text, "#", " #")

	var tags []string
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(spaced) {
		if !strings.HasPrefix(token, "#") {
			continue
		}
		tag := strings.TrimPrefix(token, "#")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// RankHashtags counts hashtags across the batch and returns the topN most
// frequent, ties broken by first appearance. When the batch yields fewer than
// topN tags the result is padded from pool, sampled without replacement.
// A nil rng keeps the pool order.
func RankHashtags(items []domain.MediaItem, topN int, pool []string, rng *rand.Rand) []string {
	if topN <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		for _, tag := range ExtractHashtags(item.CaptionText) {
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	selected := make(map[string]struct{}, topN)
	for _, tag := range order {
		selected[tag] = struct{}{}
	}
	if len(order) == topN {
		return order
	}

	for _, tag := range samplePool(pool, rng) {
		if len(order) >= topN {
			break
		}
		if _, ok := selected[tag]; ok {
			continue
		}
		selected[tag] = struct{}{}
		order = append(order, tag)
	}
	return order
}

func samplePool(pool []string, rng *rand.Rand) []string {
	candidates := make([]string, 0, len(pool))
	for _, tag := range pool {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			candidates = append(candidates, tag)
		}
	}
	if rng != nil {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}
	return candidates
}
