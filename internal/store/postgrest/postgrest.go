// Package postgrest implements the table store on a hosted PostgREST API
// (Supabase and similar services).
package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"facility_dashboard_backend/internal/store"
)

// Config locates the REST endpoint. BaseURL is the REST root, for Supabase
// https://<project>.supabase.co/rest/v1.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

// Backend serves tables over HTTP.
type Backend struct {
	client *resty.Client
}

// NewBackend creates a client for the REST API. Requests are not retried.
func NewBackend(cfg Config) *Backend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey).
			SetAuthToken(cfg.APIKey)
	}
	return &Backend{client: client}
}

func (b *Backend) Table(name string) store.Table {
	return &table{client: b.client, name: name}
}

func (b *Backend) Close() error {
	return nil
}

type table struct {
	client *resty.Client
	name   string
}

func (t *table) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	columns, err := store.ValidateQuery(t.name, q)
	if err != nil {
		return nil, err
	}
	params := filterParams(q.Filters)
	params.Set("select", strings.Join(columns, ","))
	if q.OrderBy != "" {
		direction := "asc"
		if q.Descending {
			direction = "desc"
		}
		params.Set("order", q.OrderBy+"."+direction)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var rows []store.Row
	var apiErr apiError
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&rows).
		SetError(&apiErr).
		Get("/" + t.name)
	if err := t.check("select", resp, err, &apiErr); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []store.Row{}
	}
	return rows, nil
}

func (t *table) Insert(ctx context.Context, rows []store.Row) error {
	if _, err := store.ValidateRows(t.name, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	var apiErr apiError
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		SetError(&apiErr).
		Post("/" + t.name)
	return t.check("insert", resp, err, &apiErr)
}

func (t *table) Upsert(ctx context.Context, rows []store.Row, conflictKey string) error {
	if err := store.ValidateConflictKey(t.name, conflictKey); err != nil {
		return err
	}
	if _, err := store.ValidateRows(t.name, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	var apiErr apiError
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetQueryParam("on_conflict", conflictKey).
		SetBody(rows).
		SetError(&apiErr).
		Post("/" + t.name)
	return t.check("upsert", resp, err, &apiErr)
}

func (t *table) Count(ctx context.Context, q store.Query) (int, error) {
	if _, err := store.ValidateQuery(t.name, store.Query{Filters: q.Filters}); err != nil {
		return 0, err
	}
	params := filterParams(q.Filters)
	params.Set("select", "*")

	var apiErr apiError
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "count=exact").
		SetQueryParamsFromValues(params).
		SetError(&apiErr).
		Head("/" + t.name)
	if err := t.check("count", resp, err, &apiErr); err != nil {
		return 0, err
	}
	return parseContentRange(resp.Header().Get("Content-Range"))
}

func (t *table) check(op string, resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		return &store.Error{Table: t.name, Op: op, Message: err.Error()}
	}
	if !resp.IsError() {
		return nil
	}
	storeErr := &store.Error{
		Table:   t.name,
		Op:      op,
		Message: apiErr.Message,
		Details: apiErr.Details,
		Code:    apiErr.Code,
	}
	if storeErr.Message == "" {
		storeErr.Message = fmt.Sprintf("%s %s returned %s", methodFor(op), t.name, resp.Status())
	}
	return storeErr
}

func methodFor(op string) string {
	switch op {
	case "select":
		return http.MethodGet
	case "count":
		return http.MethodHead
	default:
		return http.MethodPost
	}
}

// filterParams encodes filters in PostgREST syntax, e.g. date=gte.2024-06-01.
// Two filters on one column become a repeated parameter.
func filterParams(filters []store.Filter) url.Values {
	params := url.Values{}
	for _, f := range filters {
		var value string
		if f.Op == store.OpIn {
			values, _ := f.Value.([]string)
			value = "in.(" + strings.Join(values, ",") + ")"
		} else {
			value = string(f.Op) + "." + fmt.Sprint(f.Value)
		}
		params.Add(f.Column, value)
	}
	return params
}

// parseContentRange reads the total from a header like "0-24/3573" or "*/0".
func parseContentRange(header string) (int, error) {
	i := strings.LastIndex(header, "/")
	if i < 0 {
		return 0, &store.Error{Op: "count", Message: fmt.Sprintf("missing count in Content-Range %q", header)}
	}
	total, err := strconv.Atoi(header[i+1:])
	if err != nil {
		return 0, &store.Error{Op: "count", Message: fmt.Sprintf("invalid count in Content-Range %q", header)}
	}
	return total, nil
}
