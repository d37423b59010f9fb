package usecase

import "learnpress-facade/internal/domain/model"

// Response views. Field names are part of the public API and must stay stable.

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CourseView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
}

type CertificateView struct {
	ID      int64       `json:"id"`
	Code    string      `json:"certificate_code"`
	FileURL string      `json:"file_url"`
	Status  string      `json:"status"`
	User    *UserView   `json:"user,omitempty"`
	Course  *CourseView `json:"course,omitempty"`
}

type PlanSummaryView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Duration     int64  `json:"duration"`
	DurationUnit string `json:"duration_unit"`
}

type SubscriptionView struct {
	ID             int64            `json:"id"`
	PlanID         int64            `json:"subscription_plan_id"`
	Status         string           `json:"status"`
	StartDate      string           `json:"start_date"`
	ExpirationDate string           `json:"expiration_date"`
	AutoRenew      bool             `json:"auto_renew"`
	Plan           *PlanSummaryView `json:"plan,omitempty"`
}

type SubscriptionStatusView struct {
	UserID                int64              `json:"user_id"`
	HasSubscription       bool               `json:"has_subscription"`
	HasActiveSubscription bool               `json:"has_active_subscription"`
	IsMember              bool               `json:"is_member"`
	Subscriptions         []SubscriptionView `json:"subscriptions"`
	SubscriptionCount     int                `json:"subscription_count"`
}

type PlanView struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Price               string `json:"price"`
	Status              string `json:"status"`
	Duration            int64  `json:"duration"`
	DurationUnit        string `json:"duration_unit"`
	UserRole            string `json:"user_role"`
	TopParent           int64  `json:"top_parent"`
	SignUpFee           string `json:"sign_up_fee"`
	TrialDuration       int64  `json:"trial_duration"`
	TrialDurationUnit   string `json:"trial_duration_unit"`
	Recurring           bool   `json:"recurring"`
	Type                string `json:"type"`
	FixedMembership     bool   `json:"fixed_membership"`
	FixedExpirationDate string `json:"fixed_expiration_date"`
	AllowRenew          bool   `json:"allow_renew"`
}

type PlanListView struct {
	Plans      []PlanView `json:"plans"`
	TotalPlans int        `json:"total_plans"`
}

func newPlanSummaryView(p *model.PlanSummary) *PlanSummaryView {
	if p == nil {
		return nil
	}
	return &PlanSummaryView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Duration:     p.Duration,
		DurationUnit: p.DurationUnit,
	}
}

func newSubscriptionView(s *model.SubscriptionRecord) SubscriptionView {
	return SubscriptionView{
		ID:             s.ID,
		PlanID:         s.PlanID,
		Status:         s.Status,
		StartDate:      s.StartDate,
		ExpirationDate: s.ExpirationDate,
		AutoRenew:      s.AutoRenew,
		Plan:           newPlanSummaryView(s.Plan),
	}
}

func newPlanView(p *model.SubscriptionPlan) PlanView {
	return PlanView{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		Status:              p.Status,
		Duration:            p.Duration,
		DurationUnit:        p.DurationUnit,
		UserRole:            p.UserRole,
		TopParent:           p.TopParent,
		SignUpFee:           p.SignUpFee,
		TrialDuration:       p.TrialDuration,
		TrialDurationUnit:   p.TrialDurationUnit,
		Recurring:           p.Recurring,
		Type:                p.Type,
		FixedMembership:     p.FixedMembership,
		FixedExpirationDate: p.FixedExpirationDate,
		AllowRenew:          p.AllowRenew,
	}
}
