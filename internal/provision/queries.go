package provision

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/db/models"
)

var (
	// ErrGroupNotFound is returned when no group has the requested url.
	ErrGroupNotFound = errors.New("group not found")
	// ErrEventNotFound is returned when the group has no event with the requested id.
	ErrEventNotFound = errors.New("event not found")
)

// GroupByURL returns the group with the url slug, ignoring case.
func (s *Service) GroupByURL(ctx context.Context, url string) (*models.Group, error) {
	var g models.Group

	err := s.db.WithContext(ctx).Where("url = ?", strings.ToLower(strings.TrimSpace(url))).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}

	if err != nil {
		return nil, err
	}

	return &g, nil
}

// Event returns an event of the group.
func (s *Service) Event(ctx context.Context, groupID, eventID uint64) (*models.Event, error) {
	var e models.Event

	err := s.db.WithContext(ctx).Where("id = ? AND group_id = ?", eventID, groupID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}

	if err != nil {
		return nil, err
	}

	return &e, nil
}

// Events lists the events of a group, latest start first.
func (s *Service) Events(ctx context.Context, groupID uint64) ([]models.Event, error) {
	var events []models.Event

	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("starts_at DESC, id DESC").
		Find(&events).Error

	return events, err
}

// WaitlistCounts returns the number of active waitlisted signups per event of the group.
func (s *Service) WaitlistCounts(ctx context.Context, groupID uint64) (map[uint64]int64, error) {
	var rows []struct {
		EventID uint64
		Total   int64
	}

	err := s.db.WithContext(ctx).Model(&models.Signup{}).
		Select("signups.event_id, COUNT(*) AS total").
		Joins("JOIN events ON events.id = signups.event_id").
		Where("events.group_id = ? AND signups.is_active = ? AND signups.is_waitlisted = ?", groupID, true, true).
		Group("signups.event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64, len(rows))
	for _, r := range rows {
		counts[r.EventID] = r.Total
	}

	return counts, nil
}

// UpdateGroup changes the name and description of a group. Url and category stay fixed.
func (s *Service) UpdateGroup(ctx context.Context, group *models.Group, name, description string) error {
	group.Name = strings.TrimSpace(name)
	group.Description = strings.TrimSpace(description)

	return s.db.WithContext(ctx).Model(group).Select("name", "description").Updates(group).Error
}

// UpdateEvent changes the details of an event.
func (s *Service) UpdateEvent(
	ctx context.Context,
	event *models.Event,
	name, description string,
	start, end time.Time,
) error {
	event.Name = strings.TrimSpace(name)
	event.Description = strings.TrimSpace(description)
	event.StartsAt = start
	event.EndsAt = end

	return s.db.WithContext(ctx).Model(event).Omit("Group").
		Select("name", "description", "starts_at", "ends_at").
		Updates(event).Error
}
