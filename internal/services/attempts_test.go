package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"givehub/internal/models"
)

func TestConsumedAttempts(t *testing.T) {
	reqs := []*models.VerificationRequest{
		{Status: models.VerificationStatusPending},
		{Status: models.VerificationStatusCancelled},
		{Status: models.VerificationStatusCancelled},
		{Status: models.VerificationStatusRejected},
		{Status: models.VerificationStatusApproved},
	}
	// rejected and approved rows never charge against the cap
	assert.Equal(t, 3, consumedAttempts(reqs))
	assert.Equal(t, 0, consumedAttempts(nil))
}

func TestCooldownDaysLeft(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"just submitted", 0, 7},
		{"five days in", 5 * 24 * time.Hour, 2},
		{"six and a half days in rounds up", 6*24*time.Hour + 12*time.Hour, 1},
		{"exactly seven days", 7 * 24 * time.Hour, 0},
		{"eight days in", 8 * 24 * time.Hour, 0},
		{"one minute into the window", time.Minute, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cooldownDaysLeft(now.Add(-tt.elapsed), now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttemptsRemaining(t *testing.T) {
	assert.Equal(t, 3, attemptsRemaining(0))
	assert.Equal(t, 1, attemptsRemaining(2))
	assert.Equal(t, 0, attemptsRemaining(3))
	assert.Equal(t, 0, attemptsRemaining(5))
}
