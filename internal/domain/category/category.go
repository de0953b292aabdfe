// Package category defines the closed set of event categories and the lookup
// tables that drive routing and scoring decisions.
package category

import "strings"

// Category classifies an event's domain. The set is fixed by the upstream
// provider's taxonomy.
type Category string

// All provider categories.
const (
	Community      Category = "community"
	Concerts       Category = "concerts"
	Conferences    Category = "conferences"
	Expos          Category = "expos"
	Festivals      Category = "festivals"
	PerformingArts Category = "performing-arts"
	Sports         Category = "sports"
	Academic       Category = "academic"
	SchoolHolidays Category = "school-holidays"
	SevereWeather  Category = "severe-weather"
	Disasters      Category = "disasters"
	AirportDelays  Category = "airport-delays"
)

// All returns every category in taxonomy order.
func All() []Category {
	return []Category{
		Community, Concerts, Conferences, Expos, Festivals,
		PerformingArts, Sports, Academic, SchoolHolidays,
		SevereWeather, Disasters, AirportDelays,
	}
}

// alertSet holds categories whose events bypass scoring and truncation and
// accumulate into the run-wide alert collection.
var alertSet = map[Category]bool{
	SevereWeather: true,
	Disasters:     true,
	AirportDelays: true,
}

// IsAlert reports whether c routes to the alert branch of the pipeline.
func (c Category) IsAlert() bool { return alertSet[c] }

// String returns the wire form of the category.
func (c Category) String() string { return string(c) }

// Title returns a display form of the category, e.g. "performing-arts"
// becomes "Performing-Arts".
func (c Category) Title() string {
	parts := strings.Split(string(c), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

// DefaultBoosts returns the built-in per-category score multipliers.
// Categories absent from the map multiply by 1.0.
func DefaultBoosts() map[Category]float64 {
	return map[Category]float64{
		Concerts:  1.3,
		Festivals: 1.2,
		Sports:    1.1,
	}
}

// neverTicketed are categories whose events are assumed free of admission.
var neverTicketed = map[Category]bool{
	SchoolHolidays: true,
	Academic:       true,
}

// alwaysTicketed are categories whose events are assumed to require paid
// admission.
var alwaysTicketed = map[Category]bool{
	Concerts:       true,
	Sports:         true,
	PerformingArts: true,
}

// NeverTicketed reports whether c is assumed free of admission.
func (c Category) NeverTicketed() bool { return neverTicketed[c] }

// AlwaysTicketed reports whether c is assumed to require paid admission.
func (c Category) AlwaysTicketed() bool { return alwaysTicketed[c] }

// ParseList parses a comma-separated category list, trimming whitespace and
// dropping empty entries. Unknown names are kept as-is; the provider rejects
// them at fetch time rather than the pipeline guessing.
func ParseList(s string) []Category {
	var out []Category
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Category(part))
	}
	return out
}
