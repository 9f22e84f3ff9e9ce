package policy

import (
	"math/rand/v2"
	"time"

	"auto_repost_instagram/internal/domain"
)

// IsEligible reports whether the account may be posted from again: it has
// never been posted, or strictly more than cooldown has passed.
func IsEligible(account *domain.SourceAccount, now time.Time, cooldown time.Duration) bool {
	if account.LastUploadAt == nil {
		return true
	}
	return now.Sub(*account.LastUploadAt) > cooldown
}

// DueAccounts filters accounts down to the eligible ones in random order.
func DueAccounts(accounts []*domain.SourceAccount, now time.Time, cooldown time.Duration, rng *rand.Rand) []*domain.SourceAccount {
	due := make([]*domain.SourceAccount, 0, len(accounts))
	for _, account := range accounts {
		if IsEligible(account, now, cooldown) {
			due = append(due, account)
		}
	}
	if rng != nil {
		rng.Shuffle(len(due), func(i, j int) {
			due[i], due[j] = due[j], due[i]
		})
	}
	return due
}
