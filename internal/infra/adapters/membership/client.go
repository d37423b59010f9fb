package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/adapter"
	"learnpress-facade/internal/infra/metrics"
)

var (
	_ adapter.MembershipService = (*Client)(nil)
	_ adapter.MembershipChecker = (*Client)(nil)
)

const maxBody = 4 << 20

// Client talks to the subscription service over its JSON HTTP API.
type Client struct {
	base   *url.URL
	apiKey string
	client *http.Client
}

func NewClient(cfg config.MembershipConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("membership base url empty")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid membership base url %q", cfg.BaseURL)
	}
	return &Client{
		base:   u,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListSubscriptions returns the raw subscription records of a member.
// An unknown member has no subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context, userID int64) (recs []model.RawRecord, err error) {
	defer func(started time.Time) { metrics.ObserveMembershipCall("list_subscriptions", started, err) }(time.Now())

	body, status, err := c.get(ctx, fmt.Sprintf("/members/%d/subscriptions", userID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []model.RawRecord{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ListSubscriptions: http %d", status)
	}
	return decodeList(body)
}

func (c *Client) GetPlan(ctx context.Context, planID int64) (rec model.RawRecord, err error) {
	defer func(started time.Time) { metrics.ObserveMembershipCall("get_plan", started, err) }(time.Now())

	body, status, err := c.get(ctx, fmt.Sprintf("/plans/%d", planID), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return model.RawRecord(body), nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("GetPlan: http %d", status)
	}
}

func (c *Client) ListPlans(ctx context.Context, filter model.PlanFilter) (recs []model.RawRecord, err error) {
	defer func(started time.Time) { metrics.ObserveMembershipCall("list_plans", started, err) }(time.Now())

	q := url.Values{}
	if filter.OnlyActive {
		q.Set("only_active", "1")
	}
	if len(filter.Include) > 0 {
		q.Set("include", joinIDs(filter.Include))
	}
	if len(filter.Exclude) > 0 {
		q.Set("exclude", joinIDs(filter.Exclude))
	}
	body, status, err := c.get(ctx, "/plans", q)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ListPlans: http %d", status)
	}
	return decodeList(body)
}

// IsMemberOfAnyPlan returns domain.ErrCapabilityUnavailable when the service
// does not expose membership checks.
func (c *Client) IsMemberOfAnyPlan(ctx context.Context, userID int64, planIDs []int64) (ok bool, err error) {
	defer func(started time.Time) { metrics.ObserveMembershipCall("is_member", started, err) }(time.Now())

	q := url.Values{"plans": {joinIDs(planIDs)}}
	body, status, err := c.get(ctx, fmt.Sprintf("/members/%d/membership", userID), q)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNotImplemented:
		return false, domain.ErrCapabilityUnavailable
	default:
		return false, fmt.Errorf("IsMemberOfAnyPlan: http %d", status)
	}
	var out struct {
		IsMember any `json:"is_member"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("IsMemberOfAnyPlan: decode: %w", err)
	}
	return model.CoerceBool(out.IsMember), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, int, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// decodeList accepts a JSON array or an object keyed by record id. Object
// entries are ordered by numeric key; non-numeric keys follow in string order.
func decodeList(body []byte) ([]model.RawRecord, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return []model.RawRecord{}, nil
	}
	switch b[0] {
	case '[':
		var out []model.RawRecord
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
		out := make([]model.RawRecord, 0, len(keys))
		for _, k := range keys {
			out = append(out, model.RawRecord(m[k]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decode list: unexpected %q", b[:1])
	}
}

func keyLess(a, b string) bool {
	na, ea := strconv.ParseInt(a, 10, 64)
	nb, eb := strconv.ParseInt(b, 10, 64)
	switch {
	case ea == nil && eb == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case ea == nil:
		return true
	case eb == nil:
		return false
	default:
		return a < b
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
