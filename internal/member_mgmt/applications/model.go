package applications

import (
	"database/sql"
	"time"
)

// 申請ステータス。pending から approved / rejected への一方向遷移のみ。
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Application は card_applications テーブルの1行を表す
type Application struct {
	ApplicationID   int64
	ApplicationULID string
	AccountID       sql.NullString
	FirstName       string
	LastName        sql.NullString
	StudentClass    string
	Field           string
	RollNo          string
	Phone           string
	Email           sql.NullString
	Address         sql.NullString
	Status          string
	CardNumber      string
	StudentID       string
	IssueDate       time.Time
	ValidThrough    time.Time
	PasswordHash    sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StudentRecord は承認時に students テーブルへ書き込む内容。
// 読み出しAPIは students パッケージ側が持つ。
type StudentRecord struct {
	AccountID    string
	CardID       string
	Name         string
	StudentClass string
	Field        string
	RollNo       string
}

// 一覧取得用の検索条件
type Filter struct {
	Status     string
	CardNumber string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
