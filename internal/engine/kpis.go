package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"noctisium/internal/kpi"
)

// CreateKPIInput carries the user-facing fields of a new KPI.
type CreateKPIInput struct {
	ID                string
	Name              string
	Unit              string
	Category          kpi.Category
	Target            float64
	MinTarget         *float64
	Color             string
	AutoSource        string
	Mode              kpi.DisplayMode
	SortOrder         int
	CountsTowardTotal bool
}

var kpiIDRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CreateKPI validates and stores a new active definition.
func (s *Service) CreateKPI(ctx context.Context, in CreateKPIInput) (*kpi.Definition, error) {
	id := strings.TrimSpace(strings.ToLower(in.ID))
	if !kpiIDRe.MatchString(id) {
		return nil, fmt.Errorf("invalid KPI id %q (want lowercase identifier)", in.ID)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if in.Target <= 0 {
		return nil, fmt.Errorf("target must be positive, got %v", in.Target)
	}
	if in.MinTarget != nil && (*in.MinTarget <= 0 || *in.MinTarget >= in.Target) {
		return nil, fmt.Errorf("min target must be positive and below the target")
	}
	if !in.Category.IsValid() {
		in.Category = kpi.DefaultCategory
	}
	if !in.Mode.IsValid() {
		in.Mode = kpi.DisplaySimple
	}

	existing, err := s.kpis.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("KPI %q already exists", id)
	}

	def := kpi.Definition{
		ID:                id,
		Name:              name,
		Unit:              strings.TrimSpace(in.Unit),
		Category:          in.Category,
		Target:            in.Target,
		MinTarget:         in.MinTarget,
		Color:             in.Color,
		AutoSource:        in.AutoSource,
		Mode:              in.Mode,
		SortOrder:         in.SortOrder,
		Active:            true,
		CountsTowardTotal: in.CountsTowardTotal,
	}
	if err := s.kpis.Insert(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// UpdateKPITarget changes a definition's weekly target going forward.
func (s *Service) UpdateKPITarget(ctx context.Context, id string, target float64) error {
	if target <= 0 {
		return fmt.Errorf("target must be positive, got %v", target)
	}
	def, err := s.kpis.Get(ctx, id)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("KPI %q not found", id)
	}
	def.Target = target
	if def.MinTarget != nil && *def.MinTarget >= target {
		def.MinTarget = nil
	}
	return s.kpis.Update(ctx, def)
}

// DisableKPI soft-disables a definition; historical records keep
// referencing it, it just stops counting.
func (s *Service) DisableKPI(ctx context.Context, id string) error {
	return s.kpis.Disable(ctx, id)
}
