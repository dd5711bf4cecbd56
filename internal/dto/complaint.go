package dto

import "github.com/noah-isme/nrb-complaints-api/internal/models"

// SubmitComplaintRequest accepts JSON or multipart form bodies. The optional
// image travels as the multipart file field "image".
type SubmitComplaintRequest struct {
	Description string `json:"description" form:"description"`
}

// SubmitComplaintResponse acknowledges a stored complaint.
type SubmitComplaintResponse struct {
	Message     string `json:"message"`
	ComplaintID int64  `json:"complaintId"`
	Image       string `json:"image,omitempty"`
}

// UpdateStatusRequest carries the new review status.
type UpdateStatusRequest struct {
	Status models.ComplaintStatus `json:"status"`
}

// ExportFormat selects the admin export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
