package domain

import "time"

// Collection names used in the document store.
const (
	CollectionActivity = "activity"
	CollectionBadge    = "badge"
)

// Activity is one logged eco-friendly action. Records are never updated.
type Activity struct {
	ID           string
	Username     string
	ActivityType ActivityType
	Quantity     int
	Points       int
	Notes        *string
	CreatedAt    time.Time
}

// Badge is an awarded recognition. The same key may be recorded many times per user.
type Badge struct {
	ID          string
	Username    string
	BadgeKey    string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
}

// Player is a profile shape kept for API compatibility. Nothing reads or writes it.
type Player struct {
	Username string
	Avatar   *string
}

// activityRecord mirrors the stored activity document.
type activityRecord struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	ActivityType string    `json:"activity_type"`
	Quantity     int       `json:"quantity"`
	Points       int       `json:"points"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r activityRecord) toActivity() Activity {
	return Activity{
		ID:           r.ID,
		Username:     r.Username,
		ActivityType: ActivityType(r.ActivityType),
		Quantity:     r.Quantity,
		Points:       r.Points,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

// badgeRecord mirrors the stored badge document.
type badgeRecord struct {
	ID          string    `json:"_id"`
	Username    string    `json:"username"`
	BadgeKey    string    `json:"badge_key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r badgeRecord) toBadge() Badge {
	return Badge{
		ID:          r.ID,
		Username:    r.Username,
		BadgeKey:    r.BadgeKey,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		CreatedAt:   r.CreatedAt,
	}
}
