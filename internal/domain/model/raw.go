package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is a single upstream JSON value whose shape is not guaranteed.
// Only JSON objects normalize into domain records; everything else is skipped.
type RawRecord = json.RawMessage

type recordFields map[string]json.RawMessage

func objectFields(r RawRecord) (recordFields, bool) {
	b := bytes.TrimSpace(r)
	if len(b) == 0 || b[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false
	}
	return m, true
}

// NormalizeSubscription converts an upstream subscription into a SubscriptionRecord.
func NormalizeSubscription(r RawRecord) (*SubscriptionRecord, bool) {
	f, ok := objectFields(r)
	if !ok {
		return nil, false
	}
	return &SubscriptionRecord{
		ID:             f.intField("id"),
		PlanID:         f.intField("subscription_plan_id"),
		Status:         f.strField("status"),
		StartDate:      f.strField("start_date"),
		ExpirationDate: f.strField("expiration_date"),
		AutoRenew:      f.boolField("auto_renew"),
	}, true
}

// NormalizePlan converts an upstream plan into a SubscriptionPlan.
func NormalizePlan(r RawRecord) (*SubscriptionPlan, bool) {
	f, ok := objectFields(r)
	if !ok {
		return nil, false
	}
	return &SubscriptionPlan{
		ID:                  f.intField("id"),
		Name:                f.strField("name"),
		Description:         f.strField("description"),
		Price:               f.strField("price"),
		Status:              f.strField("status"),
		Duration:            f.intField("duration"),
		DurationUnit:        f.strField("duration_unit"),
		UserRole:            f.strField("user_role"),
		TopParent:           f.intField("top_parent"),
		SignUpFee:           f.strField("sign_up_fee"),
		TrialDuration:       f.intField("trial_duration"),
		TrialDurationUnit:   f.strField("trial_duration_unit"),
		Recurring:           f.boolField("recurring"),
		Type:                f.strField("type"),
		FixedMembership:     f.boolField("fixed_membership"),
		FixedExpirationDate: f.strField("fixed_expiration_date"),
		AllowRenew:          f.boolField("allow_renew"),
	}, true
}

func (f recordFields) value(key string) any {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func (f recordFields) intField(key string) int64 { return CoerceInt(f.value(key)) }
func (f recordFields) strField(key string) string { return CoerceString(f.value(key)) }
func (f recordFields) boolField(key string) bool { return CoerceBool(f.value(key)) }

// CoerceInt converts loosely typed scalars to an integer. Numeric strings use
// their leading integer part ("12abc" -> 12); anything unparsable is 0.
func CoerceInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if fl, err := t.Float64(); err == nil {
			return int64(fl)
		}
		return 0
	case string:
		return leadingInt(t)
	case []byte:
		return leadingInt(string(t))
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// CoerceString converts loosely typed scalars to text; null and composites are "".
func CoerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		return ""
	}
}

// CoerceBool converts loosely typed flags. "", "0" and "false" are false.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return truthy(t)
	case []byte:
		return truthy(string(t))
	case json.Number:
		fl, err := t.Float64()
		return err == nil && fl != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false":
		return false
	}
	return true
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// NormalizePlanSummary converts an upstream plan into the embedded summary view.
func NormalizePlanSummary(r RawRecord) (*PlanSummary, bool) {
	p, ok := NormalizePlan(r)
	if !ok {
		return nil, false
	}
	return p.Summary(), true
}
