package services

import (
	"math"
	"time"

	"givehub/internal/models"
)

// Verification policy knobs.
const (
	MaxAttempts     = 3
	CooldownPeriod  = 7 * 24 * time.Hour
	MaxDocumentSize = 1 << 20 // 1 MB
	DocumentMIME    = "application/pdf"
)

// consumedAttempts counts the submissions that charge against the attempt
// cap: pending and cancelled. Rejected requests stay in the history but do
// not block a resubmission on their own.
func consumedAttempts(reqs []*models.VerificationRequest) int {
	n := 0
	for _, r := range reqs {
		switch r.Status {
		case models.VerificationStatusPending, models.VerificationStatusCancelled:
			n++
		}
	}
	return n
}

func findPending(reqs []*models.VerificationRequest) *models.VerificationRequest {
	for _, r := range reqs {
		if r.Status == models.VerificationStatusPending {
			return r
		}
	}
	return nil
}

// cooldownDaysLeft returns the whole days left in the cooldown window that
// started at lastSubmittedAt, rounded up so the user-facing "N more days"
// never understates the wait. 0 means the window has passed.
func cooldownDaysLeft(lastSubmittedAt, now time.Time) int {
	left := CooldownPeriod - now.Sub(lastSubmittedAt)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

func attemptsRemaining(consumed int) int {
	if consumed >= MaxAttempts {
		return 0
	}
	return MaxAttempts - consumed
}
