package policy

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"auto_repost_instagram/internal/domain"
)

func TestIsEligible(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cooldown := 7 * 24 * time.Hour
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name         string
		lastUploadAt *time.Time
		want         bool
	}{
		{name: "never posted", lastUploadAt: nil, want: true},
		{name: "exactly cooldown", lastUploadAt: at(cooldown), want: false},
		{name: "inside cooldown", lastUploadAt: at(cooldown - time.Second), want: false},
		{name: "past cooldown", lastUploadAt: at(cooldown + time.Nanosecond), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.SourceAccount{Username: "a", LastUploadAt: tt.lastUploadAt}
			assert.Equal(t, tt.want, IsEligible(account, now, cooldown))
		})
	}
}

func TestDueAccounts(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Hour)
	old := now.Add(-100 * time.Hour)

	accounts := []*domain.SourceAccount{
		{Username: "fresh"},
		{Username: "recent", LastUploadAt: &recent},
		{Username: "old", LastUploadAt: &old},
		{Username: "new"},
	}

	due := DueAccounts(accounts, now, 24*time.Hour, rand.New(rand.NewPCG(3, 5)))

	names := make([]string, 0, len(due))
	for _, account := range due {
		names = append(names, account.Username)
	}
	assert.ElementsMatch(t, []string{"fresh", "old", "new"}, names)

	ordered := DueAccounts(accounts, now, 24*time.Hour, nil)
	assert.Equal(t, "fresh", ordered[0].Username)
	assert.Len(t, accounts, 4)
}
