package kpi

import (
	"strings"
	"time"
)

// Category groups KPIs for stat mapping and display.
type Category string

const (
	CategoryFitness    Category = "fitness"
	CategoryHealth     Category = "health"
	CategoryLearning   Category = "learning"
	CategoryDiscipline Category = "discipline"
	CategorySocial     Category = "social"
	CategoryLeisure    Category = "leisure"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFitness, CategoryHealth, CategoryLearning,
	CategoryDiscipline, CategorySocial, CategoryLeisure,
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryFitness, CategoryHealth, CategoryLearning,
		CategoryDiscipline, CategorySocial, CategoryLeisure:
		return true
	default:
		return false
	}
}

// DefaultCategory is used when user input is missing/invalid.
const DefaultCategory Category = CategoryDiscipline

// DisplayMode controls how a KPI is captured and shown.
type DisplayMode string

const (
	DisplaySimple         DisplayMode = "simple"
	DisplayDailyBreakdown DisplayMode = "daily_breakdown"
)

func (m DisplayMode) IsValid() bool {
	return m == DisplaySimple || m == DisplayDailyBreakdown
}

// Definition is a user-owned key performance indicator with a weekly target.
type Definition struct {
	ID         string
	Name       string
	Unit       string
	Category   Category
	Target     float64
	MinTarget  *float64 // optional partial-credit floor
	Color      string
	AutoSource string // tag of an external sync source, empty for manual
	Mode       DisplayMode
	SortOrder  int
	Active     bool
	// CountsTowardTotal excludes leisure-style KPIs from the aggregate
	// completion while keeping them recorded and displayed.
	CountsTowardTotal bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WeeklyRecord holds one week's raw values keyed by KPI ID, with an
// optional per-day breakdown for daily_breakdown KPIs (Mon..Sun).
type WeeklyRecord struct {
	Week   WeekKey
	Values map[string]float64
	Daily  map[string][7]float64
}

// ParseCategory normalizes user input, falling back to DefaultCategory.
func ParseCategory(input string) Category {
	c := Category(strings.TrimSpace(strings.ToLower(input)))
	if c.IsValid() {
		return c
	}
	return DefaultCategory
}
