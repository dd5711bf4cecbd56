package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nrb-complaints-api/internal/dto"
	"github.com/noah-isme/nrb-complaints-api/internal/models"
	"github.com/noah-isme/nrb-complaints-api/internal/service"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
	"github.com/noah-isme/nrb-complaints-api/pkg/response"
)

// ImageField is the multipart field carrying the optional attachment.
const ImageField = "image"

type complaintService interface {
	Submit(ctx context.Context, userID int64, description string, attachment *service.Attachment) (*service.Submission, error)
	ListMine(ctx context.Context, userID int64) ([]models.ComplaintView, error)
	ListAll(ctx context.Context) ([]models.ComplaintView, error)
	UpdateStatus(ctx context.Context, rawID string, status models.ComplaintStatus) (int64, error)
}

type exportService interface {
	Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error)
}

// ComplaintHandler exposes complaint submission and review endpoints.
type ComplaintHandler struct {
	complaints complaintService
	exports    exportService
}

// NewComplaintHandler constructs handler.
func NewComplaintHandler(complaints complaintService, exports exportService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, exports: exports}
}

// Submit godoc
// @Summary Submit a complaint
// @Description Accepts JSON or multipart/form-data. A single optional image may be sent in the "image" field.
// @Tags Complaints
// @Accept json,mpfd
// @Produce json
// @Param description formData string true "Complaint text"
// @Param image formData file false "Optional photo"
// @Success 201 {object} dto.SubmitComplaintResponse
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 500 {object} response.ErrorEnvelope
// @Router /api/complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload"))
		return
	}

	fileHeader, err := c.FormFile(ImageField)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid image upload"))
		return
	}

	var attachment *service.Attachment
	if fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid image upload"))
			return
		}
		defer closeQuietly(file)
		attachment = &service.Attachment{Filename: fileHeader.Filename, Content: file}
	}

	submission, err := h.complaints.Submit(c.Request.Context(), identity.ID, req.Description, attachment)
	if err != nil {
		if submission != nil {
			response.Error(c, err, map[string]interface{}{"complaintId": submission.ComplaintID})
			return
		}
		response.Error(c, err)
		return
	}

	res := dto.SubmitComplaintResponse{Message: "Complaint submitted successfully.", ComplaintID: submission.ComplaintID}
	if submission.ImagePath != "" {
		res.Message = "Complaint and image submitted successfully."
		res.Image = submission.ImagePath
	}
	response.Created(c, res)
}

// MyComplaints godoc
// @Summary List the caller's complaints
// @Tags Complaints
// @Produce json
// @Success 200 {array} models.ComplaintView
// @Failure 401 {object} response.ErrorEnvelope
// @Router /api/complaints/my-complaints [get]
func (h *ComplaintHandler) MyComplaints(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.complaints.ListMine(c.Request.Context(), identity.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, views)
}

// AllComplaints godoc
// @Summary List every complaint (admin)
// @Tags Complaints
// @Produce json
// @Success 200 {array} models.ComplaintView
// @Failure 403 {object} response.ErrorEnvelope
// @Router /api/complaints/all [get]
func (h *ComplaintHandler) AllComplaints(c *gin.Context) {
	views, err := h.complaints.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, views)
}

// UpdateStatus godoc
// @Summary Change a complaint's status (admin)
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path int true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/complaints/{id} [put]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status provided"))
		return
	}

	id, err := h.complaints.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Message{Message: service.StatusMessage(id, req.Status)})
}

// Export godoc
// @Summary Download every complaint as CSV or PDF (admin)
// @Tags Complaints
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Router /api/complaints/export [get]
func (h *ComplaintHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), dto.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
