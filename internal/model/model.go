package model

import (
	"time"
)

type Book struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	Category    string    `json:"category" db:"category"`
	ISBN        string    `json:"isbn" db:"isbn"`
	Description string    `json:"description" db:"description"`
	CoverRef    string    `json:"coverRef" db:"cover_ref"`
	DocumentRef string    `json:"documentRef" db:"document_ref"`
	Available   bool      `json:"available" db:"available"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type BookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Category    string `json:"category"`
	ISBN        string `json:"isbn" validate:"required"`
	Description string `json:"description"`
	CoverRef    string `json:"coverRef"`
	DocumentRef string `json:"documentRef"`
}

// SearchFilter narrows the catalog listing. Zero values mean "no filter".
type SearchFilter struct {
	Keyword       string
	Category      string
	OnlyAvailable bool
}

type Loan struct {
	ID         int64      `json:"-" db:"id"`
	LoanUid    string     `json:"loanUid" db:"loan_uid"`
	BookID     int64      `json:"bookId" db:"book_id"`
	Student    string     `json:"student" db:"student"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	Returned   bool       `json:"returned" db:"returned"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
}

// LoanView is a loan enriched with joined book and borrower attributes.
type LoanView struct {
	Loan      `json:",inline"`
	BookTitle string `json:"bookTitle" db:"book_title"`
	Email     string `json:"email,omitempty" db:"email"`
}

type OverdueLoan struct {
	LoanUid   string    `json:"loanUid" db:"loan_uid"`
	BookID    int64     `json:"bookId" db:"book_id"`
	BookTitle string    `json:"bookTitle" db:"book_title"`
	Student   string    `json:"student" db:"student"`
	Email     string    `json:"email" db:"email"`
	DueDate   time.Time `json:"dueDate" db:"due_date"`
}

type Student struct {
	Username string `json:"username" db:"username" validate:"required"`
	Email    string `json:"email" db:"email" validate:"omitempty,email"`
}

type EventKind string

const (
	EventBorrowed EventKind = "BORROWED"
	EventReturned EventKind = "RETURNED"
)

// LoanEvent is published to the loan event feed after a committed transition.
type LoanEvent struct {
	Kind    EventKind `json:"kind"`
	LoanUid string    `json:"loanUid"`
	BookID  int64     `json:"bookId"`
	Student string    `json:"student"`
	At      time.Time `json:"at"`
}
