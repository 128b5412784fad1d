package auth

import (
	"time"

	"github.com/sirupsen/logrus"
)

// TokenPurger removes expired and revoked refresh tokens
type TokenPurger interface {
	CleanupTokens(now time.Time) (int64, error)
}

type TokenCleanupService struct {
	refreshTokenRepo TokenPurger
	now              func() time.Time
}

func NewTokenCleanupService(refreshTokenRepo TokenPurger) *TokenCleanupService {
	return &TokenCleanupService{
		refreshTokenRepo: refreshTokenRepo,
		now:              time.Now,
	}
}

// Cleanup performs one pass over expired and revoked tokens. It is run by the
// scheduler.
func (s *TokenCleanupService) Cleanup() {
	removed, err := s.refreshTokenRepo.CleanupTokens(s.now())
	if err != nil {
		logrus.Errorf("Failed to cleanup tokens: %v", err)
		return
	}
	if removed > 0 {
		logrus.Infof("Token cleanup removed %d tokens", removed)
	}
}
