package models

import "time"

// ComplaintStatus is the review state of a complaint.
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "Submitted"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// ComplaintStatuses lists every accepted status in review order.
var ComplaintStatuses = []ComplaintStatus{StatusSubmitted, StatusInProgress, StatusResolved}

// Valid reports whether s is one of the accepted statuses.
func (s ComplaintStatus) Valid() bool {
	for _, known := range ComplaintStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Complaint is a row of the complaints table.
type Complaint struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Description string          `db:"description" json:"description"`
	Status      ComplaintStatus `db:"status" json:"status"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submitted_at"`
}

// Image is an attachment reference; Filepath is the public URL path.
type Image struct {
	ID          int64  `db:"id" json:"id"`
	ComplaintID int64  `db:"complaint_id" json:"complaint_id"`
	Filepath    string `db:"filepath" json:"filepath"`
}

// ComplaintView is a complaint as returned by listings. Images is never
// nil; UserEmail is only filled for the admin listing.
type ComplaintView struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Status      ComplaintStatus `json:"status"`
	SubmittedAt time.Time       `json:"submitted_at"`
	UserEmail   string          `json:"user_email,omitempty"`
	Images      []string        `json:"images"`
}
