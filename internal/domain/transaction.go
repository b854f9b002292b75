package domain

import "time"

type TransactionID string

type TransactionType string

const (
	TransactionDeposit TransactionType = "deposit"
	TransactionDeduct  TransactionType = "deduct"
	TransactionRefund  TransactionType = "refund"
	TransactionBonus   TransactionType = "bonus"
)

// Transaction is one entry of the server-side billing ledger.
type Transaction struct {
	ID           TransactionID
	UserID       UserID
	Type         TransactionType
	Amount       float64
	BalanceAfter float64
	TaskID       TaskID
	Reference    string
	Description  string
	CreatedAt    time.Time
}

// FinanceStats mirrors the aggregate financial metrics the administrative
// dashboard polls.
type FinanceStats struct {
	TotalRevenue     float64
	TotalDeposits    float64
	TotalRefunds     float64
	NetBalance       float64
	DepositCount     int
	RefundCount      int
	TodayRevenue     float64
	TodayTasks       int
	TodaySuccessRate float64
	WeekRevenue      float64
	WeekTasks        int
	WeekNewUsers     int
	MonthRevenue     float64
	MonthTasks       int
	MonthActiveUsers int
}
