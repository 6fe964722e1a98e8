package domain

const (
	BadgePlantPower = "plant_power"
	BadgeBigImpact  = "big_impact"

	plantPowerMinMeals = 3
	bigImpactMinPoints = 50
)

// BadgeDescriptor describes a badge kind independent of who earned it.
type BadgeDescriptor struct {
	Key         string
	Name        string
	Description string
	Icon        string
}

var (
	plantPower = BadgeDescriptor{
		Key:         BadgePlantPower,
		Name:        "Plant Power",
		Description: "Logged 3+ vegan meals in one go!",
		Icon:        "leaf",
	}
	bigImpact = BadgeDescriptor{
		Key:         BadgeBigImpact,
		Name:        "Big Impact",
		Description: "Scored 50+ points from one action",
		Icon:        "zap",
	}
)

// EvaluateBadges returns the badges earned by a single logged activity.
// Rules only look at this activity; history is never consulted.
func EvaluateBadges(t ActivityType, quantity, totalPoints int) []BadgeDescriptor {
	badges := make([]BadgeDescriptor, 0, 2)
	if t == ActivityVeganMeal && quantity >= plantPowerMinMeals {
		badges = append(badges, plantPower)
	}
	if totalPoints >= bigImpactMinPoints {
		badges = append(badges, bigImpact)
	}
	return badges
}
