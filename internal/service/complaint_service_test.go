package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
)

type mockComplaintRepo struct {
	complaints   []*models.Complaint
	images       []*models.Image
	createErr    error
	attachErr    error
	listErr      error
	updateErr    error
	statusByID   map[int64]models.ComplaintStatus
	listByUserID int64
	updateCalls  int
}

func (m *mockComplaintRepo) Create(ctx context.Context, complaint *models.Complaint) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	complaint.ID = int64(len(m.complaints) + 1)
	m.complaints = append(m.complaints, complaint)
	return complaint.ID, nil
}

func (m *mockComplaintRepo) AttachImage(ctx context.Context, image *models.Image) (int64, error) {
	if m.attachErr != nil {
		return 0, m.attachErr
	}
	image.ID = int64(len(m.images) + 1)
	m.images = append(m.images, image)
	return image.ID, nil
}

func (m *mockComplaintRepo) ListByUser(ctx context.Context, userID int64) ([]models.ComplaintView, error) {
	m.listByUserID = userID
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []models.ComplaintView{{ID: 1, Images: []string{}}}, nil
}

func (m *mockComplaintRepo) ListAll(ctx context.Context) ([]models.ComplaintView, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []models.ComplaintView{
		{ID: 2, Description: "Flooded road", Status: models.StatusInProgress, SubmittedAt: time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC), UserEmail: "b@example.com", Images: []string{"/uploads/1-a.jpg"}},
		{ID: 1, Description: "Broken bench", Status: models.StatusSubmitted, SubmittedAt: time.Date(2024, 4, 1, 7, 30, 0, 0, time.UTC), UserEmail: "a@example.com", Images: []string{}},
	}, nil
}

func (m *mockComplaintRepo) UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus) (bool, error) {
	m.updateCalls++
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if _, ok := m.statusByID[id]; !ok {
		return false, nil
	}
	m.statusByID[id] = status
	return true, nil
}

type mockStorage struct {
	saved   map[string]string
	saveErr error
	deleted []string
}

func (m *mockStorage) SaveStream(original string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	name := "1700000000000-" + original
	m.saved[name] = string(data)
	return name, nil
}

func (m *mockStorage) PublicPath(name string) string {
	return "/uploads/" + name
}

func (m *mockStorage) Delete(name string) error {
	m.deleted = append(m.deleted, name)
	delete(m.saved, name)
	return nil
}

func TestSubmitWithoutAttachment(t *testing.T) {
	repo := &mockComplaintRepo{}
	store := &mockStorage{}
	svc := NewComplaintService(repo, store, nil, nil)

	res, err := svc.Submit(context.Background(), 3, "  "+gofakeit.Sentence(8)+"  ", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ComplaintID)
	assert.Empty(t, res.ImagePath)

	require.Len(t, repo.complaints, 1)
	stored := repo.complaints[0]
	assert.Equal(t, int64(3), stored.UserID)
	assert.Equal(t, models.StatusSubmitted, stored.Status)
	assert.Equal(t, strings.TrimSpace(stored.Description), stored.Description)
	assert.Equal(t, time.UTC, stored.SubmittedAt.Location())
	assert.Empty(t, repo.images)
	assert.Empty(t, store.saved)
}

func TestSubmitRejectsEmptyDescription(t *testing.T) {
	repo := &mockComplaintRepo{}
	svc := NewComplaintService(repo, &mockStorage{}, nil, nil)

	for _, description := range []string{"", "   ", "\n\t"} {
		res, err := svc.Submit(context.Background(), 3, description, &Attachment{Filename: "a.jpg", Content: strings.NewReader("x")})
		assert.Nil(t, res)
		requireAppError(t, err, http.StatusBadRequest)
	}
	assert.Empty(t, repo.complaints)
}

func TestSubmitWithAttachment(t *testing.T) {
	repo := &mockComplaintRepo{}
	store := &mockStorage{}
	svc := NewComplaintService(repo, store, nil, NewMetricsService())

	res, err := svc.Submit(context.Background(), 3, "Blocked drain", &Attachment{Filename: "drain.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-drain.png", res.ImagePath)

	require.Len(t, repo.images, 1)
	assert.Equal(t, res.ComplaintID, repo.images[0].ComplaintID)
	assert.Equal(t, res.ImagePath, repo.images[0].Filepath)
	assert.Equal(t, "png", store.saved["1700000000000-drain.png"])
}

func TestSubmitAttachmentWriteFailureKeepsComplaint(t *testing.T) {
	repo := &mockComplaintRepo{}
	store := &mockStorage{saveErr: errors.New("no space left on device")}
	svc := NewComplaintService(repo, store, nil, nil)

	res, err := svc.Submit(context.Background(), 3, "Collapsed wall", &Attachment{Filename: "wall.jpg", Content: strings.NewReader("jpg")})
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, appErrors.ErrAttachmentFailed.Code, appErr.Code)

	require.NotNil(t, res)
	assert.Equal(t, int64(1), res.ComplaintID)
	assert.Len(t, repo.complaints, 1)
	assert.Empty(t, repo.images)
}

func TestSubmitAttachmentLinkFailureRemovesFile(t *testing.T) {
	repo := &mockComplaintRepo{attachErr: errors.New("database is locked")}
	store := &mockStorage{}
	svc := NewComplaintService(repo, store, nil, nil)

	res, err := svc.Submit(context.Background(), 3, "Illegal dumping", &Attachment{Filename: "dump.jpg", Content: strings.NewReader("jpg")})
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, appErrors.ErrAttachmentFailed.Code, appErr.Code)
	assert.Equal(t, int64(1), res.ComplaintID)
	assert.Equal(t, []string{"1700000000000-dump.jpg"}, store.deleted)
	assert.Empty(t, store.saved)
}

func TestSubmitStoreFailure(t *testing.T) {
	repo := &mockComplaintRepo{createErr: errors.New("connection reset")}
	store := &mockStorage{}
	svc := NewComplaintService(repo, store, nil, nil)

	res, err := svc.Submit(context.Background(), 3, "Pothole", &Attachment{Filename: "p.jpg", Content: strings.NewReader("x")})
	assert.Nil(t, res)
	requireAppError(t, err, http.StatusInternalServerError)
	assert.Empty(t, store.saved)
}

func TestListMineScopesToCaller(t *testing.T) {
	repo := &mockComplaintRepo{}
	svc := NewComplaintService(repo, &mockStorage{}, nil, nil)

	views, err := svc.ListMine(context.Background(), 12)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, int64(12), repo.listByUserID)

	repo.listErr = errors.New("boom")
	_, err = svc.ListMine(context.Background(), 12)
	requireAppError(t, err, http.StatusInternalServerError)
}

func TestUpdateStatus(t *testing.T) {
	repo := &mockComplaintRepo{statusByID: map[int64]models.ComplaintStatus{4: models.StatusSubmitted}}
	svc := NewComplaintService(repo, &mockStorage{}, nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "4", "Closed")
	requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, models.StatusSubmitted, repo.statusByID[4])
	assert.Zero(t, repo.updateCalls)

	for _, rawID := range []string{"999", "abc", "-1", ""} {
		_, err = svc.UpdateStatus(ctx, rawID, models.StatusResolved)
		requireAppError(t, err, http.StatusNotFound)
	}

	id, err := svc.UpdateStatus(ctx, "4", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, models.StatusInProgress, repo.statusByID[4])
	assert.Equal(t, "Complaint 4 status updated to In Progress.", StatusMessage(id, models.StatusInProgress))

	repo.updateErr = errors.New("timeout")
	_, err = svc.UpdateStatus(ctx, "4", models.StatusResolved)
	requireAppError(t, err, http.StatusInternalServerError)
}
