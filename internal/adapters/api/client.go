package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

const maxResponseBytes = 1 << 20

const (
	loginPath        = "/auth/jwt/login"
	registerPath     = "/auth/register"
	currentUserPath  = "/users/me"
	rotateKeyPath    = "/users/me/regenerate-api-key"
	tasksPath        = "/api/v1/tasks"
	transactionsPath = "/api/v1/transactions"
	depositPath      = "/api/v1/deposit"
	adminUsersPath   = "/admin/users"
	adminTasksPath   = "/admin/tasks"
	adminStatsPath   = "/admin/finance/stats"
)

// Client implements ports.Gateway over the service's HTTP API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
}

var _ ports.Gateway = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client, requestTimeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}
}

func (c *Client) ExchangeCredentials(ctx context.Context, email, password string) (string, error) {
	// fastapi-users style form exchange; the field is named username but
	// carries the email.
	values := url.Values{}
	values.Set("username", email)
	values.Set("password", password)

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload tokenPayload
	if err := c.do(req, &payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrUnavailable)
	}

	return payload.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodPost, registerPath, "", registerRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	defer cancel()

	return c.do(req, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, currentUserPath, token, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer cancel()

	var payload userPayload
	if err := c.do(req, &payload); err != nil {
		return domain.User{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) RotateAPIKey(ctx context.Context, token string) (string, error) {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodPost, rotateKeyPath, token, nil)
	if err != nil {
		return "", err
	}
	defer cancel()

	var payload rotateKeyPayload
	if err := c.do(req, &payload); err != nil {
		return "", err
	}

	return payload.APIKey, nil
}

func (c *Client) ListTasks(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error) {
	return c.listTasks(ctx, token, tasksPath, query)
}

func (c *Client) GetTask(ctx context.Context, token string, id domain.TaskID) (domain.Task, error) {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, tasksPath+"/"+url.PathEscape(string(id)), token, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer cancel()

	var payload taskPayload
	if err := c.do(req, &payload); err != nil {
		return domain.Task{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) ListTransactions(ctx context.Context, token string, limit, offset int) ([]domain.Transaction, error) {
	path := transactionsPath + "?" + pageQuery(limit, offset).Encode()
	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var payload []transactionPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	transactions := make([]domain.Transaction, 0, len(payload))
	for _, item := range payload {
		transactions = append(transactions, item.toDomain())
	}

	return transactions, nil
}

func (c *Client) CreateDeposit(ctx context.Context, token string, amount float64) (string, error) {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodPost, depositPath, token, depositRequest{Amount: amount})
	if err != nil {
		return "", err
	}
	defer cancel()

	var payload depositPayload
	if err := c.do(req, &payload); err != nil {
		return "", err
	}

	return payload.CheckoutURL, nil
}

func (c *Client) AdminListUsers(ctx context.Context, token string, limit, offset int) ([]domain.User, error) {
	path := adminUsersPath + "?" + pageQuery(limit, offset).Encode()
	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var payload []userPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(payload))
	for _, item := range payload {
		users = append(users, item.toDomain())
	}

	return users, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, token string, id domain.UserID, update ports.UserUpdate) (domain.User, error) {
	body := userUpdateRequest{IsActive: update.Active, IsSuperuser: update.Admin}
	req, cancel, err := c.newJSONRequest(ctx, http.MethodPatch, adminUsersPath+"/"+url.PathEscape(string(id)), token, body)
	if err != nil {
		return domain.User{}, err
	}
	defer cancel()

	var payload userPayload
	if err := c.do(req, &payload); err != nil {
		return domain.User{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) AdminListTasks(ctx context.Context, token string, query ports.TaskQuery) ([]domain.Task, error) {
	return c.listTasks(ctx, token, adminTasksPath, query)
}

func (c *Client) AdminFinanceStats(ctx context.Context, token string) (domain.FinanceStats, error) {
	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, adminStatsPath, token, nil)
	if err != nil {
		return domain.FinanceStats{}, err
	}
	defer cancel()

	var payload financeStatsPayload
	if err := c.do(req, &payload); err != nil {
		return domain.FinanceStats{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) listTasks(ctx context.Context, token, path string, query ports.TaskQuery) ([]domain.Task, error) {
	values := pageQuery(query.Limit, query.Offset)
	if query.Status != nil {
		values.Set("status", string(*query.Status))
	}

	req, cancel, err := c.newJSONRequest(ctx, http.MethodGet, path+"?"+values.Encode(), token, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var payload []taskPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(payload))
	for _, item := range payload {
		tasks = append(tasks, item.toDomain())
	}

	return tasks, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path, token string, body any) (*http.Request, context.CancelFunc, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	req, err := http.NewRequestWithContext(requestCtx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create %s request: %w", method, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, cancel, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var payload errorPayload
		_ = json.NewDecoder(body).Decode(&payload)
		return mapStatusError(resp.StatusCode, payload.message())
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

func mapStatusError(status int, detail string) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		switch {
		case strings.Contains(detail, "LOGIN_BAD_CREDENTIALS"):
			return domain.ErrInvalidCredentials
		case strings.Contains(detail, "REGISTER_USER_ALREADY_EXISTS"):
			return domain.ErrEmailTaken
		case strings.Contains(detail, "REGISTER_INVALID_PASSWORD"):
			return domain.ErrWeakPassword
		}
		if detail == "" {
			detail = "request rejected"
		}
		return fmt.Errorf("request rejected: %s", detail)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUnavailable, status)
	}
}

func pageQuery(limit, offset int) url.Values {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}

	return values
}
