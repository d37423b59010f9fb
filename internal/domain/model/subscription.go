package model

const (
	SubscriptionStatusActive = "active"
	SubscriptionStatusTrial  = "trial"
)

// SubscriptionRecord is a member subscription as reported by the membership service.
// Status is upstream-defined; only "active" and "trial" count as active.
type SubscriptionRecord struct {
	ID             int64
	PlanID         int64
	Status         string
	StartDate      string
	ExpirationDate string
	AutoRenew      bool
	Plan           *PlanSummary
}

// IsActive is derived from Status on every call and must not be persisted.
func (s *SubscriptionRecord) IsActive() bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrial
}
