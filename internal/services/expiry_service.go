package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

/*
ExpiryService runs the periodic sweep over sessions that crossed the 48h
response window. Expiry itself is computed on read; the sweep exists only
to notify both parties once, never to mutate the flow state.
*/
type ExpiryService struct {
	negRepo  repositories.NegotiationRepository
	propRepo repositories.PropertyRepository
	userRepo repositories.UserRepository
	notifier *NotificationService
	now      func() time.Time
}

func NewExpiryService(
	negRepo repositories.NegotiationRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notifier *NotificationService,
) *ExpiryService {
	return &ExpiryService{
		negRepo:  negRepo,
		propRepo: propRepo,
		userRepo: userRepo,
		notifier: notifier,
		now:      time.Now,
	}
}

// RunExpirySweep notifies the parties of every active session whose
// window lapsed since the last run.
func (s *ExpiryService) RunExpirySweep(ctx context.Context) error {
	cutoff := s.now().Add(-constants.ResponseWindow)
	expired, err := s.negRepo.ListActivePendingBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	utils.Logger.WithFields(logrus.Fields{
		"count": len(expired),
	}).Info("Expiry sweep found lapsed negotiations")

	for _, n := range expired {
		p, err := s.propRepo.GetByID(ctx, n.PropertyID)
		if err != nil || p == nil {
			utils.Logger.Warnf("Expiry sweep: property %s missing for negotiation %s", n.PropertyID, n.ID)
			continue
		}
		s.notifyParty(ctx, n, p, n.BuyerID)
		s.notifyParty(ctx, n, p, n.SellerID)

		if err := s.negRepo.SetExpiryNotified(ctx, n.ID); err != nil {
			utils.Logger.WithError(err).Warnf("Expiry sweep: failed to mark negotiation %s notified", n.ID)
		}
	}
	return nil
}

func (s *ExpiryService) notifyParty(ctx context.Context, n *models.Negotiation, p *models.Property, userID uuid.UUID) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		utils.Logger.Warnf("Expiry sweep: could not load user %s", userID)
		return
	}
	s.notifier.NotifyExpired(u, n, p)
}
