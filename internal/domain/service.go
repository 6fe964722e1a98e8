// Package domain defines the points, badge and query logic for GreenPoints.
package domain

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/greenpoints/internal/cache"
	"example.com/greenpoints/internal/docstore"
	"example.com/greenpoints/internal/events"
	"example.com/greenpoints/internal/observability"
)

// DefaultSeedUsername is used by Seed when no username is supplied.
const DefaultSeedUsername = "neo"

// Service orchestrates activity logging and read queries over a document store.
type Service struct {
	store     docstore.Store
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher events.Publisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithCache enables read-through caching of leaderboard and summary reads.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher sets where logged activities and awarded badges are announced.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger overrides the logger used to report non-fatal failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service.
func NewService(store docstore.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.NoopPublisher{},
		logger:    logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogActivityInput captures the payload from the API layer.
type LogActivityInput struct {
	Username     string
	ActivityType string
	Quantity     int
	Notes        *string
}

// AwardedBadge is a badge descriptor together with the id of its stored record.
type AwardedBadge struct {
	ID string
	BadgeDescriptor
}

// LogResult is returned by LogActivity.
type LogResult struct {
	InsertedID string
	Points     int
	Badges     []AwardedBadge
}

// LogActivity validates, scores and persists an activity, then persists any badges it earns.
// A store failure aborts the remaining steps; records already written are kept.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*LogResult, error) {
	activityType := ActivityType(input.ActivityType)
	if !ValidActivityType(activityType) {
		return nil, ErrInvalidActivityType
	}
	if input.Quantity > MaxQuantity {
		return nil, ErrQuantityTooLarge
	}

	quantity := ClampQuantity(input.Quantity)
	points := ComputePoints(activityType, quantity)
	now := s.now().UTC()

	var notes any
	if input.Notes != nil {
		notes = *input.Notes
	}

	activityID, err := s.store.InsertOne(ctx, CollectionActivity, docstore.Document{
		"username":      input.Username,
		"activity_type": string(activityType),
		"quantity":      quantity,
		"points":        points,
		"notes":         notes,
		"created_at":    now,
	})
	if err != nil {
		return nil, storageFailure("insert_activity", err)
	}
	observability.RecordActivityLogged(string(activityType), points, now)

	result := &LogResult{
		InsertedID: activityID,
		Points:     points,
		Badges:     make([]AwardedBadge, 0),
	}

	pending := []events.Event{{
		Type: events.TypeActivityLogged,
		Key:  input.Username,
		Payload: events.ActivityLogged{
			ActivityID:   activityID,
			Username:     input.Username,
			ActivityType: string(activityType),
			Quantity:     quantity,
			Points:       points,
			Notes:        input.Notes,
			LoggedAt:     now,
		},
	}}

	for _, descriptor := range EvaluateBadges(activityType, quantity, points) {
		badgeID, err := s.store.InsertOne(ctx, CollectionBadge, docstore.Document{
			"username":    input.Username,
			"badge_key":   descriptor.Key,
			"name":        descriptor.Name,
			"description": descriptor.Description,
			"icon":        descriptor.Icon,
			"created_at":  now,
		})
		if err != nil {
			s.invalidate(ctx, input.Username)
			return nil, storageFailure("insert_badge", err)
		}
		observability.RecordBadgeAwarded(descriptor.Key)
		result.Badges = append(result.Badges, AwardedBadge{ID: badgeID, BadgeDescriptor: descriptor})
		pending = append(pending, events.Event{
			Type: events.TypeBadgeAwarded,
			Key:  input.Username,
			Payload: events.BadgeAwarded{
				BadgeID:    badgeID,
				ActivityID: activityID,
				Username:   input.Username,
				BadgeKey:   descriptor.Key,
				Name:       descriptor.Name,
				AwardedAt:  now,
			},
		})
	}

	s.invalidate(ctx, input.Username)
	if err := s.publisher.Publish(ctx, pending...); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"activity_id": activityID,
			"username":    input.Username,
		}).Warn("event publish failed")
	}

	return result, nil
}

var seedActivities = []struct {
	activityType ActivityType
	quantity     int
}{
	{ActivityPublicTransport, 2},
	{ActivityVeganMeal, 3},
	{ActivityRecycling, 5},
	{ActivityBikeRide, 1},
}

// Seed logs a fixed set of demo activities for username.
func (s *Service) Seed(ctx context.Context, username string) ([]LogResult, error) {
	if username == "" {
		username = DefaultSeedUsername
	}

	created := make([]LogResult, 0, len(seedActivities))
	for _, item := range seedActivities {
		res, err := s.LogActivity(ctx, LogActivityInput{
			Username:     username,
			ActivityType: string(item.activityType),
			Quantity:     item.quantity,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *res)
	}
	return created, nil
}

// invalidate drops cached reads that the new records make stale.
func (s *Service) invalidate(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{cache.LeaderboardKey(), cache.SummaryKey(username)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("cache invalidation failed")
		}
	}
}

func storageFailure(op string, err error) error {
	observability.RecordStorageFailure(op)
	return &StorageError{Op: op, Err: err}
}
