package students

import "time"

// Student は承認済みカード申請から派生するレコード。
// 作成は applications 側の承認処理だけが行い、ここでは読み出しのみ。
type Student struct {
	StudentPK    int64
	AccountID    string
	CardID       string
	Name         string
	StudentClass string
	Field        string
	RollNo       string
	CreatedAt    time.Time
}

type StudentResponse struct {
	AccountID    string    `json:"accountId"`
	CardID       string    `json:"cardId"`
	Name         string    `json:"name"`
	StudentClass string    `json:"studentClass"`
	Field        string    `json:"field"`
	RollNo       string    `json:"rollNo"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type ListResponse struct {
	Items []StudentResponse `json:"items"`
	Total int64             `json:"total"`
}
