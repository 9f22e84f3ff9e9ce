// Package policy holds the selection and deduplication rules that decide what
// gets re-posted: media ranking, hashtag aggregation, caption layout and
// account eligibility. Everything here is pure and side-effect free.
package policy

import (
	"container/heap"

	"auto_repost_instagram/internal/domain"
)

// DefaultTopMediaCount is the batch size used when none is configured.
const DefaultTopMediaCount = 3

// RankOptions controls candidate selection.
type RankOptions struct {
	// TopMediaCount caps the number of candidates in a batch
	TopMediaCount int

	// AcceptVideo allows a lone video to be selected as its own post
	AcceptVideo bool
}

// Selection is the ranked, deduplicated candidate batch for one account.
type Selection struct {
	Type  domain.PostType
	Items []domain.MediaItem
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.Items) == 0
}

type rankedItem struct {
	item domain.MediaItem
	pos  int
}

// popularityQueue yields items by descending popularity, ties in input order.
// Heapify is linear and each pop is logarithmic, so ranking stops as soon as
// the batch is full instead of ordering the whole catalog.
type popularityQueue []rankedItem

func newPopularityQueue(items []domain.MediaItem) *popularityQueue {
	q := make(popularityQueue, len(items))
	for i, item := range items {
		q[i] = rankedItem{item: item, pos: i}
	}
	heap.Init(&q)
	return &q
}

func (q popularityQueue) Len() int { return len(q) }

func (q popularityQueue) Less(i, j int) bool {
	if q[i].item.Popularity != q[j].item.Popularity {
		return q[i].item.Popularity > q[j].item.Popularity
	}
	return q[i].pos < q[j].pos
}

func (q popularityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *popularityQueue) Push(x any) { *q = append(*q, x.(rankedItem)) }

func (q *popularityQueue) Pop() any {
	old := *q
	n := len(old) - 1
	entry := old[n]
	*q = old[:n]
	return entry
}

// next returns the most popular remaining item.
func (q *popularityQueue) next() (domain.MediaItem, bool) {
	if q.Len() == 0 {
		return domain.MediaItem{}, false
	}
	return heap.Pop(q).(rankedItem).item, true
}

// RankCandidates picks up to TopMediaCount unused photo candidates in
// popularity order. With AcceptVideo, an unused video reached before any
// photo candidate is returned alone as a video post.
func RankCandidates(items []domain.MediaItem, used map[string]struct{}, opts RankOptions) Selection {
	limit := opts.TopMediaCount
	if limit <= 0 {
		limit = DefaultTopMediaCount
	}

	var batch []domain.MediaItem
	queue := newPopularityQueue(items)
	for len(batch) < limit {
		item, ok := queue.next()
		if !ok {
			break
		}
		if _, seen := used[item.DedupKey()]; seen {
			continue
		}

		switch {
		case isPhotoCandidate(item):
			batch = append(batch, item)
		case opts.AcceptVideo && len(batch) == 0 && isVideoCandidate(item):
			return Selection{Type: domain.PostTypeVideo, Items: []domain.MediaItem{item}}
		}
	}

	if len(batch) == 0 {
		return Selection{}
	}
	if len(batch) == 1 && batch[0].Kind == domain.MediaKindPhoto {
		return Selection{Type: domain.PostTypePhoto, Items: batch}
	}
	return Selection{Type: domain.PostTypeAlbum, Items: batch}
}

func isPhotoCandidate(item domain.MediaItem) bool {
	switch item.Kind {
	case domain.MediaKindPhoto:
		return true
	case domain.MediaKindAlbum:
		primary, ok := item.Primary()
		return ok && primary.Kind == domain.MediaKindPhoto
	default:
		return false
	}
}

func isVideoCandidate(item domain.MediaItem) bool {
	if item.Kind != domain.MediaKindVideo {
		return false
	}
	switch item.ProductType {
	case "", domain.ProductTypeFeed, domain.ProductTypeIGTV, domain.ProductTypeClips:
		return true
	default:
		return false
	}
}
