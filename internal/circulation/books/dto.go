package books

import "time"

// ===== Requests =====

type CreateBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
	// 所蔵数。available は省略時 total と同値で始まる
	TotalCopies     int     `json:"totalCopies"`
	AvailableCopies *int    `json:"availableCopies,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty"`
	PDFURL          *string `json:"pdfUrl,omitempty"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	TotalCopies *int    `json:"totalCopies,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	PDFURL      *string `json:"pdfUrl,omitempty"`
}

// ===== Responses =====

type BookResponse struct {
	BookID          int64     `json:"bookId"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	ImageURL        *string   `json:"imageUrl,omitempty"`
	PDFURL          *string   `json:"pdfUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Items []BookResponse `json:"items"`
	Total int64          `json:"total"`
}
