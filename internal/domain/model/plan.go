package model

const PlanStatusActive = "active"

// PlanSummary is the subset of plan fields embedded in a subscription.
type PlanSummary struct {
	ID           int64
	Name         string
	Description  string
	Price        string
	Duration     int64
	DurationUnit string
}

// SubscriptionPlan is the full projection of an upstream plan definition.
type SubscriptionPlan struct {
	ID                  int64
	Name                string
	Description         string
	Price               string
	Status              string
	Duration            int64
	DurationUnit        string
	UserRole            string
	TopParent           int64
	SignUpFee           string
	TrialDuration       int64
	TrialDurationUnit   string
	Recurring           bool
	Type                string
	FixedMembership     bool
	FixedExpirationDate string
	AllowRenew          bool
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == 0 }

func (p *SubscriptionPlan) IsActive() bool { return p != nil && p.Status == PlanStatusActive }

// Summary returns the embedded-plan view of p.
func (p *SubscriptionPlan) Summary() *PlanSummary {
	if p == nil {
		return nil
	}
	return &PlanSummary{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Duration:     p.Duration,
		DurationUnit: p.DurationUnit,
	}
}

// PlanFilter mirrors the plan listing parameters of the membership service.
type PlanFilter struct {
	OnlyActive bool
	Include    []int64
	Exclude    []int64
}

// Match reports whether p passes the filter.
func (f PlanFilter) Match(p *SubscriptionPlan) bool {
	if p == nil {
		return false
	}
	if f.OnlyActive && !p.IsActive() {
		return false
	}
	if len(f.Include) > 0 && !containsID(f.Include, p.ID) {
		return false
	}
	if containsID(f.Exclude, p.ID) {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
