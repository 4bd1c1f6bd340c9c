package applications

import "time"

// ===== Requests =====

type SubmitApplicationRequest struct {
	FirstName    string  `json:"firstName" binding:"required"`
	LastName     *string `json:"lastName,omitempty"`
	AccountID    *string `json:"accountId,omitempty"`
	StudentClass string  `json:"studentClass"`
	Field        string  `json:"field"`
	RollNo       string  `json:"rollNo" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Email        *string `json:"email,omitempty"`
	Address      *string `json:"address,omitempty"`
	// 任意。登録するとカード番号＋パスワードでログインできるようになる
	Password *string `json:"password,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CardLoginRequest struct {
	CardNumber string `json:"cardNumber" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ===== Responses =====

// フィールド名は保存互換のため status / cardNumber / studentId /
// issueDate / validThrough をそのまま使う。
type ApplicationResponse struct {
	ApplicationULID string     `json:"applicationUlid"`
	AccountID       *string    `json:"accountId,omitempty"`
	FirstName       string     `json:"firstName"`
	LastName        *string    `json:"lastName,omitempty"`
	StudentClass    string     `json:"studentClass"`
	Field           string     `json:"field"`
	RollNo          string     `json:"rollNo"`
	Phone           string     `json:"phone"`
	Email           *string    `json:"email,omitempty"`
	Address         *string    `json:"address,omitempty"`
	Status          string     `json:"status"`
	CardNumber      string     `json:"cardNumber"`
	StudentID       string     `json:"studentId"`
	IssueDate       time.Time  `json:"issueDate"`
	ValidThrough    time.Time  `json:"validThrough"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CardLoginResponse struct {
	Token      string `json:"token"`
	CardNumber string `json:"cardNumber"`
	StudentID  string `json:"studentId"`
	Name       string `json:"name"`
}

type ListResponse struct {
	Items []ApplicationResponse `json:"items"`
	Total int64                 `json:"total"`
}
