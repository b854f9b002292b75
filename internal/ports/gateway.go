package ports

import (
	"context"

	"solvectl/internal/domain"
)

// TaskQuery narrows a task listing. Status is a server-side filter; a nil
// status returns every task.
type TaskQuery struct {
	Status *domain.TaskStatus
	Limit  int
	Offset int
}

// UserUpdate carries the activate/suspend flags of an administrative user
// update. Nil fields are left untouched.
type UserUpdate struct {
	Active *bool
	Admin  *bool
}

// Gateway is the remote task-processing service. It is stateless from the
// client's perspective: the bearer token is passed on every call and every
// method may fail with a generic network error.
type Gateway interface {
	ExchangeCredentials(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) error
	CurrentUser(ctx context.Context, token string) (domain.User, error)
	RotateAPIKey(ctx context.Context, token string) (string, error)

	ListTasks(ctx context.Context, token string, query TaskQuery) ([]domain.Task, error)
	GetTask(ctx context.Context, token string, id domain.TaskID) (domain.Task, error)
	ListTransactions(ctx context.Context, token string, limit, offset int) ([]domain.Transaction, error)
	CreateDeposit(ctx context.Context, token string, amount float64) (string, error)

	AdminListUsers(ctx context.Context, token string, limit, offset int) ([]domain.User, error)
	AdminUpdateUser(ctx context.Context, token string, id domain.UserID, update UserUpdate) (domain.User, error)
	AdminListTasks(ctx context.Context, token string, query TaskQuery) ([]domain.Task, error)
	AdminFinanceStats(ctx context.Context, token string) (domain.FinanceStats, error)
}
