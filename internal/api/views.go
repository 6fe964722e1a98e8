package api

import (
	"errors"
	"strings"
	"time"

	"example.com/greenpoints/internal/domain"
)

// LogActivityRequest is the payload for POST /api/activities.
type LogActivityRequest struct {
	Username     string  `json:"username"`
	ActivityType string  `json:"activity_type"`
	Quantity     *int    `json:"quantity"`
	Notes        *string `json:"notes"`
}

// Validate ensures request correctness. Unknown activity types are left to the service.
func (r LogActivityRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if r.Quantity != nil && *r.Quantity > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	return nil
}

func (r LogActivityRequest) input() domain.LogActivityInput {
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return domain.LogActivityInput{
		Username:     r.Username,
		ActivityType: r.ActivityType,
		Quantity:     quantity,
		Notes:        r.Notes,
	}
}

// SummaryRequest is the payload for POST /api/summary.
type SummaryRequest struct {
	Username string `json:"username"`
}

// Validate ensures request correctness.
func (r SummaryRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	return nil
}

// AwardedBadgeView is a badge created by a log call.
type AwardedBadgeView struct {
	ID          string `json:"id"`
	BadgeKey    string `json:"badge_key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// LogActivityResponse describes the response body for a logged activity.
type LogActivityResponse struct {
	InsertedID string             `json:"inserted_id"`
	Points     int                `json:"points"`
	Badges     []AwardedBadgeView `json:"badges"`
}

// SeedResponse wraps the results of the demo seed.
type SeedResponse struct {
	OK      bool                  `json:"ok"`
	Created []LogActivityResponse `json:"created"`
}

// ActivityView exposes a stored activity.
type ActivityView struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	ActivityType string    `json:"activity_type"`
	Quantity     int       `json:"quantity"`
	Points       int       `json:"points"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// BadgeView exposes a stored badge.
type BadgeView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	BadgeKey    string    `json:"badge_key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeaderboardEntryView is one ranked user.
type LeaderboardEntryView struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// SummaryView is the shareable summary body.
type SummaryView struct {
	Username         string      `json:"username"`
	TotalPoints      int         `json:"total_points"`
	ActivitiesLogged int         `json:"activities_logged"`
	Badges           []BadgeView `json:"badges"`
	ShareText        string      `json:"share_text"`
}

// ActivityTypeView lists one accepted activity type and its reward.
type ActivityTypeView struct {
	ActivityType  string `json:"activity_type"`
	PointsPerUnit int    `json:"points_per_unit"`
}

// StatusView is the body of GET /test.
type StatusView struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// NewLogActivityResponse renders a log result for the wire.
func NewLogActivityResponse(res domain.LogResult) LogActivityResponse {
	badges := make([]AwardedBadgeView, 0, len(res.Badges))
	for _, b := range res.Badges {
		badges = append(badges, AwardedBadgeView{
			ID:          b.ID,
			BadgeKey:    b.Key,
			Name:        b.Name,
			Description: b.Description,
			Icon:        b.Icon,
		})
	}
	return LogActivityResponse{InsertedID: res.InsertedID, Points: res.Points, Badges: badges}
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:           a.ID,
		Username:     a.Username,
		ActivityType: string(a.ActivityType),
		Quantity:     a.Quantity,
		Points:       a.Points,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
	}
}

func toBadgeViews(badges []domain.Badge) []BadgeView {
	views := make([]BadgeView, 0, len(badges))
	for _, b := range badges {
		views = append(views, BadgeView{
			ID:          b.ID,
			Username:    b.Username,
			BadgeKey:    b.BadgeKey,
			Name:        b.Name,
			Description: b.Description,
			Icon:        b.Icon,
			CreatedAt:   b.CreatedAt,
		})
	}
	return views
}

// NewSeedResponse renders the seed results for the wire.
func NewSeedResponse(results []domain.LogResult) SeedResponse {
	created := make([]LogActivityResponse, 0, len(results))
	for _, res := range results {
		created = append(created, NewLogActivityResponse(res))
	}
	return SeedResponse{OK: true, Created: created}
}

// NewLeaderboardView renders ranked entries for the wire.
func NewLeaderboardView(entries []domain.LeaderboardEntry) []LeaderboardEntryView {
	items := make([]LeaderboardEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, LeaderboardEntryView{Username: e.Username, Points: e.Points})
	}
	return items
}

// NewSummaryView renders a summary for the wire.
func NewSummaryView(summary domain.Summary) SummaryView {
	return SummaryView{
		Username:         summary.Username,
		TotalPoints:      summary.TotalPoints,
		ActivitiesLogged: summary.ActivitiesLogged,
		Badges:           toBadgeViews(summary.Badges),
		ShareText:        summary.ShareText,
	}
}
