package borrows

import "time"

// ===== Requests =====

type CreateBorrowRequest struct {
	BookID int64 `json:"bookId" binding:"required"`
	// 会員カードで借りる場合。students から氏名・連絡先を引く
	CardNumber *string `json:"cardNumber,omitempty"`
	// カードなしで窓口貸出する場合は借り手情報を直接渡す
	BorrowerID    *string `json:"borrowerId,omitempty"`
	BorrowerName  *string `json:"borrowerName,omitempty"`
	BorrowerPhone *string `json:"borrowerPhone,omitempty"`
	BorrowerEmail *string `json:"borrowerEmail,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
	// returned にする場合のみ意味を持つ。省略時は現在時刻
	ReturnDate *time.Time `json:"returnDate,omitempty"`
}

// ===== Responses =====

// フィールド名は保存互換のため status / borrowDate / dueDate / returnDate を使う。
type BorrowResponse struct {
	BorrowULID    string     `json:"borrowUlid"`
	BookID        int64      `json:"bookId"`
	BookTitle     string     `json:"bookTitle"`
	BorrowerID    string     `json:"borrowerId"`
	BorrowerName  string     `json:"borrowerName"`
	BorrowerPhone *string    `json:"borrowerPhone,omitempty"`
	BorrowerEmail *string    `json:"borrowerEmail,omitempty"`
	BorrowDate    time.Time  `json:"borrowDate"`
	DueDate       time.Time  `json:"dueDate"`
	ReturnDate    *time.Time `json:"returnDate,omitempty"`
	Status        string     `json:"status"`
}

type ListResponse struct {
	Items []BorrowResponse `json:"items"`
	Total int64            `json:"total"`
}
