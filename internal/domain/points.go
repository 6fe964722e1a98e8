package domain

// ActivityType tags one kind of eco-friendly action.
type ActivityType string

const (
	ActivityPublicTransport ActivityType = "public_transport"
	ActivityVeganMeal       ActivityType = "vegan_meal"
	ActivityRecycling       ActivityType = "recycling"
	ActivityBikeRide        ActivityType = "bike_ride"
	ActivityRefill          ActivityType = "refill"
	ActivityThrift          ActivityType = "thrift"
	ActivityTreePlanting    ActivityType = "tree_planting"
)

// pointsTable holds the per-unit reward for each activity type.
var pointsTable = map[ActivityType]int{
	ActivityPublicTransport: 15,
	ActivityVeganMeal:       10,
	ActivityRecycling:       8,
	ActivityBikeRide:        12,
	ActivityRefill:          6,
	ActivityThrift:          14,
	ActivityTreePlanting:    50,
}

var activityTypes = []ActivityType{
	ActivityPublicTransport,
	ActivityVeganMeal,
	ActivityRecycling,
	ActivityBikeRide,
	ActivityRefill,
	ActivityThrift,
	ActivityTreePlanting,
}

// ActivityTypes lists every accepted activity type.
func ActivityTypes() []ActivityType {
	out := make([]ActivityType, len(activityTypes))
	copy(out, activityTypes)
	return out
}

// ValidActivityType reports whether t is one of the accepted tags.
func ValidActivityType(t ActivityType) bool {
	_, ok := pointsTable[t]
	return ok
}

// PointsPerUnit returns the reward for a single unit of t.
func PointsPerUnit(t ActivityType) int {
	return pointsTable[t]
}

// MaxQuantity is the largest quantity a single log call accepts.
const MaxQuantity = 1_000_000

// ClampQuantity coerces quantities below one up to one.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// ComputePoints converts a logged quantity into points. Callers reject unknown types first.
func ComputePoints(t ActivityType, quantity int) int {
	return quantity * pointsTable[t]
}
