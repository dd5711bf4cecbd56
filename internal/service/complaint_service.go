package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) (int64, error)
	AttachImage(ctx context.Context, image *models.Image) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ComplaintView, error)
	ListAll(ctx context.Context) ([]models.ComplaintView, error)
	UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus) (bool, error)
}

type attachmentStorage interface {
	SaveStream(original string, r io.Reader) (string, error)
	PublicPath(name string) string
	Delete(name string) error
}

// Attachment is an uploaded file accompanying a complaint.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// Submission is the outcome of Submit. ComplaintID is set whenever the
// complaint itself was stored, even if its attachment was not.
type Submission struct {
	ComplaintID int64
	ImagePath   string
}

// ComplaintService implements complaint submission and review.
type ComplaintService struct {
	repo    complaintRepository
	storage attachmentStorage
	logger  *zap.Logger
	metrics *MetricsService
	now     func() time.Time
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(repo complaintRepository, storage attachmentStorage, logger *zap.Logger, metrics *MetricsService) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{repo: repo, storage: storage, logger: logger, metrics: metrics, now: time.Now}
}

// Submit stores a complaint and then, if one was supplied, its attachment.
// The steps are not atomic: once the complaint is stored it stays stored,
// and an attachment failure is returned alongside a Submission carrying
// the complaint id.
func (s *ComplaintService) Submit(ctx context.Context, userID int64, description string, attachment *Attachment) (*Submission, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "complaint description cannot be empty")
	}

	complaint := &models.Complaint{
		UserID:      userID,
		Description: description,
		Status:      models.StatusSubmitted,
		SubmittedAt: s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, complaint)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit complaint")
	}

	submission := &Submission{ComplaintID: id}
	s.metrics.RecordComplaint(attachment != nil)
	if attachment == nil {
		return submission, nil
	}

	path, err := s.attach(ctx, id, attachment)
	if err != nil {
		return submission, err
	}
	submission.ImagePath = path
	return submission, nil
}

func (s *ComplaintService) attach(ctx context.Context, complaintID int64, attachment *Attachment) (string, error) {
	name, err := s.storage.SaveStream(attachment.Filename, attachment.Content)
	if err != nil {
		s.metrics.RecordAttachment("write_failed")
		s.logger.Error("store attachment", zap.Int64("complaint_id", complaintID), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrAttachmentFailed.Code, appErrors.ErrAttachmentFailed.Status, appErrors.ErrAttachmentFailed.Message)
	}

	path := s.storage.PublicPath(name)
	if _, err := s.repo.AttachImage(ctx, &models.Image{ComplaintID: complaintID, Filepath: path}); err != nil {
		s.metrics.RecordAttachment("link_failed")
		s.logger.Error("record attachment", zap.Int64("complaint_id", complaintID), zap.String("path", path), zap.Error(err))
		if delErr := s.storage.Delete(name); delErr != nil {
			s.logger.Warn("remove orphaned attachment", zap.String("name", name), zap.Error(delErr))
		}
		return "", appErrors.Wrap(err, appErrors.ErrAttachmentFailed.Code, appErrors.ErrAttachmentFailed.Status, "failed to save image reference, but complaint was saved")
	}

	s.metrics.RecordAttachment("stored")
	return path, nil
}

// ListMine returns the caller's own complaints, newest first.
func (s *ComplaintService) ListMine(ctx context.Context, userID int64) ([]models.ComplaintView, error) {
	views, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retrieve complaints")
	}
	return views, nil
}

// ListAll returns every complaint with its owner's email, newest first.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.ComplaintView, error) {
	views, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retrieve complaints")
	}
	return views, nil
}

// UpdateStatus changes a complaint's status. rawID comes straight from the
// URL; ids that cannot name a complaint are reported as not found.
func (s *ComplaintService) UpdateStatus(ctx context.Context, rawID string, status models.ComplaintStatus) (int64, error) {
	if !status.Valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid status provided")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}

	changed, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
	}
	if !changed {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}

	s.metrics.RecordStatusUpdate(status)
	s.logger.Info("complaint status updated", zap.Int64("complaint_id", id), zap.String("status", string(status)))
	return id, nil
}

// StatusMessage is the acknowledgement returned after a status change.
func StatusMessage(id int64, status models.ComplaintStatus) string {
	return fmt.Sprintf("Complaint %d status updated to %s.", id, status)
}
