package borrows

import (
	"database/sql"
	"time"
)

// 貸出ステータス。borrowed から returned への一方向遷移のみ。
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// 貸出期間（日）
const loanPeriodDays = 14

// Borrow は book_borrows テーブルの1行を表す。
// 書名と借り手の連絡先は貸出時点のスナップショットで、以後変わらない。
type Borrow struct {
	BorrowID      int64
	BorrowULID    string
	BookID        int64
	BookTitle     string
	BorrowerID    string
	BorrowerName  string
	BorrowerPhone sql.NullString
	BorrowerEmail sql.NullString
	BorrowDate    time.Time
	DueDate       time.Time
	ReturnDate    sql.NullTime
	Status        string
}

// BookRef は貸出処理が必要とする books 側の情報だけ。
type BookRef struct {
	BookID          int64
	Title           string
	TotalCopies     int
	AvailableCopies int
}

// BorrowerRef はカード番号から引いた借り手情報（students + card_applications）。
type BorrowerRef struct {
	BorrowerID string
	Name       string
	Phone      sql.NullString
	Email      sql.NullString
}

// 一覧取得用の検索条件
type Filter struct {
	BorrowerID      string
	BookID          *int64
	Status          string
	OnlyOutstanding bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
