package api

import (
	"encoding/json"
	"time"

	"solvectl/internal/domain"
)

type tokenPayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userPayload struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Balance      float64 `json:"balance"`
	APIKeyPrefix string  `json:"api_key_prefix"`
	IsActive     bool    `json:"is_active"`
	IsSuperuser  bool    `json:"is_superuser"`
	IsVerified   bool    `json:"is_verified"`
	CreatedAt    string  `json:"created_at"`
	LastLoginAt  string  `json:"last_login_at"`
}

func (p userPayload) toDomain() domain.User {
	role := domain.RoleUser
	if p.IsSuperuser {
		role = domain.RoleAdmin
	}

	return domain.User{
		ID:           domain.UserID(p.ID),
		Email:        p.Email,
		Role:         role,
		Balance:      p.Balance,
		APIKeyPrefix: p.APIKeyPrefix,
		Active:       p.IsActive,
		Verified:     p.IsVerified,
		CreatedAt:    parseServerTime(p.CreatedAt),
		LastLoginAt:  parseServerTimePtr(p.LastLoginAt),
	}
}

type taskPayload struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserEmail     string  `json:"user_email"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	WebsiteURL    string  `json:"website_url"`
	WebsiteKey    string  `json:"website_key"`
	WebsiteDomain string  `json:"website_domain"`
	IsEnterprise  bool    `json:"is_enterprise"`
	Token         string  `json:"token"`
	Cost          float64 `json:"cost"`
	ErrorCode     string  `json:"error_code"`
	ErrorDesc     string  `json:"error_desc"`
	RetryCount    int     `json:"retry_count"`
	CreatedAt     string  `json:"created_at"`
	StartedAt     string  `json:"started_at"`
	CompletedAt   string  `json:"completed_at"`
}

func (p taskPayload) toDomain() domain.Task {
	// Known kinds normalize (the service emits Proxyless-suffixed variants);
	// unknown kinds and statuses pass through untouched because the server
	// owns the record and its data wins.
	kind := domain.TaskKind(p.Type)
	if parsed, err := domain.ParseTaskKind(p.Type); err == nil {
		kind = parsed
	}

	return domain.Task{
		ID:            domain.TaskID(p.ID),
		OwnerID:       domain.UserID(p.UserID),
		OwnerEmail:    p.UserEmail,
		Kind:          kind,
		Status:        domain.TaskStatus(p.Status),
		WebsiteURL:    p.WebsiteURL,
		WebsiteKey:    p.WebsiteKey,
		WebsiteDomain: p.WebsiteDomain,
		IsEnterprise:  p.IsEnterprise,
		Token:         p.Token,
		Cost:          p.Cost,
		ErrorCode:     p.ErrorCode,
		ErrorDesc:     p.ErrorDesc,
		RetryCount:    p.RetryCount,
		CreatedAt:     parseServerTime(p.CreatedAt),
		StartedAt:     parseServerTimePtr(p.StartedAt),
		CompletedAt:   parseServerTimePtr(p.CompletedAt),
	}
}

type transactionPayload struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	BalanceAfter float64 `json:"balance_after"`
	TaskID       string  `json:"task_id"`
	Reference    string  `json:"reference"`
	Description  string  `json:"description"`
	CreatedAt    string  `json:"created_at"`
}

func (p transactionPayload) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:           domain.TransactionID(p.ID),
		UserID:       domain.UserID(p.UserID),
		Type:         domain.TransactionType(p.Type),
		Amount:       p.Amount,
		BalanceAfter: p.BalanceAfter,
		TaskID:       domain.TaskID(p.TaskID),
		Reference:    p.Reference,
		Description:  p.Description,
		CreatedAt:    parseServerTime(p.CreatedAt),
	}
}

type financeStatsPayload struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalDeposits    float64 `json:"total_deposits"`
	TotalRefunds     float64 `json:"total_refunds"`
	NetBalance       float64 `json:"net_balance"`
	DepositCount     int     `json:"deposit_count"`
	RefundCount      int     `json:"refund_count"`
	TodayRevenue     float64 `json:"today_revenue"`
	TodayTasks       int     `json:"today_tasks"`
	TodaySuccessRate float64 `json:"today_success_rate"`
	WeekRevenue      float64 `json:"week_revenue"`
	WeekTasks        int     `json:"week_tasks"`
	WeekNewUsers     int     `json:"week_new_users"`
	MonthRevenue     float64 `json:"month_revenue"`
	MonthTasks       int     `json:"month_tasks"`
	MonthActiveUsers int     `json:"month_active_users"`
}

func (p financeStatsPayload) toDomain() domain.FinanceStats {
	return domain.FinanceStats{
		TotalRevenue:     p.TotalRevenue,
		TotalDeposits:    p.TotalDeposits,
		TotalRefunds:     p.TotalRefunds,
		NetBalance:       p.NetBalance,
		DepositCount:     p.DepositCount,
		RefundCount:      p.RefundCount,
		TodayRevenue:     p.TodayRevenue,
		TodayTasks:       p.TodayTasks,
		TodaySuccessRate: p.TodaySuccessRate,
		WeekRevenue:      p.WeekRevenue,
		WeekTasks:        p.WeekTasks,
		WeekNewUsers:     p.WeekNewUsers,
		MonthRevenue:     p.MonthRevenue,
		MonthTasks:       p.MonthTasks,
		MonthActiveUsers: p.MonthActiveUsers,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type rotateKeyPayload struct {
	APIKey string `json:"api_key"`
}

type depositRequest struct {
	Amount float64 `json:"amount"`
}

type depositPayload struct {
	CheckoutURL string `json:"checkout_url"`
}

type userUpdateRequest struct {
	IsActive    *bool `json:"is_active,omitempty"`
	IsSuperuser *bool `json:"is_superuser,omitempty"`
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

func (p errorPayload) message() string {
	if len(p.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(p.Detail, &detail); err == nil {
		return detail
	}

	return string(p.Detail)
}

// The service emits naive UTC timestamps in ISO form; tolerate those as
// well as zoned RFC 3339.
func parseServerTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return ts.UTC()
	}

	return time.Time{}
}

func parseServerTimePtr(value string) *time.Time {
	ts := parseServerTime(value)
	if ts.IsZero() {
		return nil
	}

	return &ts
}
