package app

import (
	"context"

	"github.com/example/fieldloop/internal/ports/primary"
	"github.com/example/fieldloop/internal/ports/secondary"
)

// ActivityServiceImpl implements the ActivityService interface.
type ActivityServiceImpl struct {
	activityRepo secondary.ActivityRepository
}

// NewActivityService creates a new ActivityService with injected dependencies.
func NewActivityService(activityRepo secondary.ActivityRepository) *ActivityServiceImpl {
	return &ActivityServiceImpl{activityRepo: activityRepo}
}

// ListActivity retrieves events for a project, newest first.
func (s *ActivityServiceImpl) ListActivity(ctx context.Context, projectID string, limit int) ([]*primary.ActivityEntry, error) {
	records, err := s.activityRepo.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.ActivityEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.ActivityEntry{
			ID:               r.ID,
			EventType:        r.EventType,
			ProjectID:        r.ProjectID,
			EntityType:       r.EntityType,
			EntityID:         r.EntityID,
			Summary:          r.Summary,
			EventData:        r.EventData,
			HomeownerVisible: r.HomeownerVisible,
			CreatedAt:        r.CreatedAt,
		}
	}
	return entries, nil
}

// Ensure ActivityServiceImpl implements the interface
var _ primary.ActivityService = (*ActivityServiceImpl)(nil)
