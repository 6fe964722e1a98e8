package domain

import (
	"context"
	"fmt"

	"example.com/greenpoints/internal/cache"
	"example.com/greenpoints/internal/docstore"
)

const (
	DefaultLeaderboardLimit = 10
	DefaultActivityLimit    = 50

	// leaderboardCacheDepth is how many ranked users are cached; deeper reads bypass the cache.
	leaderboardCacheDepth = 100
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Username string
	Points   int
}

// Summary is the shareable per-user roll-up.
type Summary struct {
	Username         string
	TotalPoints      int
	ActivitiesLogged int
	Badges           []Badge
	ShareText        string
}

// Leaderboard ranks users by summed points, highest first. Tie order is unspecified.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if s.cache == nil || limit > leaderboardCacheDepth {
		return s.leaderboard(ctx, limit)
	}

	entries, err := cache.UseCache(ctx, s.cache, cache.LeaderboardKey(), s.cacheTTL, func() ([]LeaderboardEntry, error) {
		return s.leaderboard(ctx, leaderboardCacheDepth)
	})
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.store.Aggregate(ctx, CollectionActivity, docstore.Pipeline{
		docstore.Group{By: "username", Accumulators: []docstore.Accumulator{docstore.Sum("points", "points")}},
		docstore.Sort{Field: "points", Descending: true},
		docstore.Limit{N: limit},
	})
	if err != nil {
		return nil, storageFailure("aggregate_leaderboard", err)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LeaderboardEntry{
			Username: row.String(docstore.IDField),
			Points:   int(row.Int64("points")),
		})
	}
	return entries, nil
}

// ListActivities returns activities, filtered by username when one is given.
func (s *Service) ListActivities(ctx context.Context, username string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	docs, err := s.store.FindMany(ctx, CollectionActivity, userFilter(username), limit)
	if err != nil {
		return nil, storageFailure("find_activities", err)
	}

	activities := make([]Activity, 0, len(docs))
	for _, doc := range docs {
		var rec activityRecord
		if err := docstore.Decode(doc, &rec); err != nil {
			return nil, storageFailure("decode_activity", err)
		}
		activities = append(activities, rec.toActivity())
	}
	return activities, nil
}

// ListBadges returns every badge record, filtered by username when one is given.
func (s *Service) ListBadges(ctx context.Context, username string) ([]Badge, error) {
	return s.findBadges(ctx, userFilter(username))
}

func (s *Service) findBadges(ctx context.Context, filter docstore.Filter) ([]Badge, error) {
	docs, err := s.store.FindMany(ctx, CollectionBadge, filter, 0)
	if err != nil {
		return nil, storageFailure("find_badges", err)
	}

	badges := make([]Badge, 0, len(docs))
	for _, doc := range docs {
		var rec badgeRecord
		if err := docstore.Decode(doc, &rec); err != nil {
			return nil, storageFailure("decode_badge", err)
		}
		badges = append(badges, rec.toBadge())
	}
	return badges, nil
}

// ShareableSummary totals a user's activities and collects their badges.
func (s *Service) ShareableSummary(ctx context.Context, username string) (*Summary, error) {
	if s.cache == nil {
		return s.summary(ctx, username)
	}
	return cache.UseCache(ctx, s.cache, cache.SummaryKey(username), s.cacheTTL, func() (*Summary, error) {
		return s.summary(ctx, username)
	})
}

func (s *Service) summary(ctx context.Context, username string) (*Summary, error) {
	rows, err := s.store.Aggregate(ctx, CollectionActivity, docstore.Pipeline{
		docstore.Match{Filter: docstore.Filter{"username": username}},
		docstore.Group{By: "username", Accumulators: []docstore.Accumulator{
			docstore.Sum("points", "points"),
			docstore.Count("count"),
		}},
	})
	if err != nil {
		return nil, storageFailure("aggregate_summary", err)
	}

	var totalPoints, count int
	if len(rows) > 0 {
		totalPoints = int(rows[0].Int64("points"))
		count = int(rows[0].Int64("count"))
	}

	badges, err := s.findBadges(ctx, docstore.Filter{"username": username})
	if err != nil {
		return nil, err
	}

	return &Summary{
		Username:         username,
		TotalPoints:      totalPoints,
		ActivitiesLogged: count,
		Badges:           badges,
		ShareText:        ShareText(username, totalPoints, count),
	}, nil
}

// ShareText renders the shareable sentence for a summary.
func ShareText(username string, totalPoints, activitiesLogged int) string {
	return fmt.Sprintf("%s earned %d Green Points with %d eco actions! 🌿", username, totalPoints, activitiesLogged)
}

func userFilter(username string) docstore.Filter {
	if username == "" {
		return nil
	}
	return docstore.Filter{"username": username}
}
