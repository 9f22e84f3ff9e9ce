package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionStrings(t *testing.T) {
	tests := []struct {
		name string
		base []string
		add  []string
		want []string
	}{
		{name: "both empty", want: []string{}},
		{name: "append new", base: []string{"a"}, add: []string{"b"}, want: []string{"a", "b"}},
		{name: "skip existing", base: []string{"a", "b"}, add: []string{"b", "c"}, want: []string{"a", "b", "c"}},
		{name: "dedupe base", base: []string{"a", "a"}, add: nil, want: []string{"a"}},
		{name: "dedupe add", base: nil, add: []string{"x", "x", "y"}, want: []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnionStrings(tt.base, tt.add))
		})
	}
}

func TestSourceAccount_ApplyUsageIsIdempotent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	account := &SourceAccount{
		Username:     "alice",
		UsedMediaIDs: []string{"1"},
		UsedHashtags: []string{"sun"},
	}
	usage := Usage{MediaIDs: []string{"1", "2"}, Hashtags: []string{"sun", "beach"}, At: at}

	account.ApplyUsage(usage)
	first := account.Clone()
	account.ApplyUsage(usage)

	assert.Equal(t, []string{"1", "2"}, account.UsedMediaIDs)
	assert.Equal(t, []string{"sun", "beach"}, account.UsedHashtags)
	assert.Equal(t, first.UsedMediaIDs, account.UsedMediaIDs)
	assert.Equal(t, first.UsedHashtags, account.UsedHashtags)
	require.NotNil(t, account.LastUploadAt)
	assert.True(t, account.LastUploadAt.Equal(at))
	used := account.UsedMediaSet()
	assert.Contains(t, used, "2")
	assert.NotContains(t, used, "3")
}

func TestSourceAccount_CloneIsDeep(t *testing.T) {
	at := time.Now()
	original := &SourceAccount{Username: "bob", UsedMediaIDs: []string{"1"}, LastUploadAt: &at}

	clone := original.Clone()
	clone.UsedMediaIDs[0] = "changed"
	*clone.LastUploadAt = at.Add(time.Hour)

	assert.Equal(t, "1", original.UsedMediaIDs[0])
	assert.True(t, original.LastUploadAt.Equal(at))
	assert.Nil(t, (*SourceAccount)(nil).Clone())
}
