package services

import (
	"context"
	"errors"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// notFound turns a missing record into a lifecycle not-found error and
// passes anything else through.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lifecycle.NewError(lifecycle.CodeNotFound, "%s %s not found", what, id)
	}
	return err
}

func recordTransition(tx store.Tx, entityType, entityID, campaignID, oldStatus, newStatus, changedBy, notes string, now time.Time) error {
	return tx.AppendStatusHistory(&models.StatusHistory{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		CampaignID: campaignID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ChangedBy:  changedBy,
		Notes:      notes,
		CreatedAt:  now,
	})
}

// publish delivers events after commit. Delivery failures are logged and do
// not undo the committed change.
func publish(ctx context.Context, publisher EventPublisher, events ...models.LifecycleEvent) {
	if publisher == nil {
		return
	}
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event":       event.Type,
				"campaign_id": event.CampaignID,
			}).Warnf("Failed to publish lifecycle event: %v", err)
		}
	}
}

func requireReviewer(actor *lifecycle.Actor) error {
	if !actor.CanReview() {
		return lifecycle.NewError(lifecycle.CodeForbidden, "reviewer or admin role required")
	}
	return nil
}

func requireAdmin(actor *lifecycle.Actor) error {
	if actor == nil || actor.Role != models.RoleAdmin {
		return lifecycle.NewError(lifecycle.CodeForbidden, "admin role required")
	}
	return nil
}
