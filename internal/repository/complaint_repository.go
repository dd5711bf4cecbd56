package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
)

// ComplaintRepository persists complaints and their image references.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

type complaintImageRow struct {
	ID          int64                  `db:"id"`
	Description string                 `db:"description"`
	Status      models.ComplaintStatus `db:"status"`
	SubmittedAt time.Time              `db:"submitted_at"`
	UserEmail   sql.NullString         `db:"user_email"`
	Filepath    sql.NullString         `db:"filepath"`
}

const complaintViewOrder = ` ORDER BY c.submitted_at DESC, c.id DESC, i.id ASC`

// Create inserts a complaint and returns its id.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) (int64, error) {
	query := r.db.Rebind(`INSERT INTO complaints (user_id, description, status, submitted_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, complaint.UserID, complaint.Description, complaint.Status, complaint.SubmittedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("create complaint: %w", err)
	}
	complaint.ID = id
	return id, nil
}

// AttachImage records an image path against an existing complaint.
func (r *ComplaintRepository) AttachImage(ctx context.Context, image *models.Image) (int64, error) {
	query := r.db.Rebind(`INSERT INTO images (complaint_id, filepath) VALUES (?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, image.ComplaintID, image.Filepath).Scan(&id); err != nil {
		return 0, fmt.Errorf("attach image: %w", err)
	}
	image.ID = id
	return id, nil
}

// ListByUser returns the user's complaints newest first with their images.
func (r *ComplaintRepository) ListByUser(ctx context.Context, userID int64) ([]models.ComplaintView, error) {
	query := r.db.Rebind(`SELECT c.id, c.description, c.status, c.submitted_at, NULL AS user_email, i.filepath
FROM complaints c
LEFT JOIN images i ON i.complaint_id = c.id
WHERE c.user_id = ?` + complaintViewOrder)
	var rows []complaintImageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list complaints by user: %w", err)
	}
	return foldComplaintRows(rows), nil
}

// ListAll returns every complaint newest first with the owner's email.
func (r *ComplaintRepository) ListAll(ctx context.Context) ([]models.ComplaintView, error) {
	const query = `SELECT c.id, c.description, c.status, c.submitted_at, u.email AS user_email, i.filepath
FROM complaints c
JOIN users u ON u.id = c.user_id
LEFT JOIN images i ON i.complaint_id = c.id` + complaintViewOrder
	var rows []complaintImageRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list all complaints: %w", err)
	}
	return foldComplaintRows(rows), nil
}

// UpdateStatus sets the status of a complaint and reports whether a row matched.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus) (bool, error) {
	query := r.db.Rebind(`UPDATE complaints SET status = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("update complaint status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update complaint status rows: %w", err)
	}
	return affected > 0, nil
}

// foldComplaintRows collapses one-row-per-image join results into views,
// keeping the order of first appearance.
func foldComplaintRows(rows []complaintImageRow) []models.ComplaintView {
	views := make([]models.ComplaintView, 0, len(rows))
	index := make(map[int64]int, len(rows))
	for _, row := range rows {
		pos, ok := index[row.ID]
		if !ok {
			pos = len(views)
			index[row.ID] = pos
			views = append(views, models.ComplaintView{
				ID:          row.ID,
				Description: row.Description,
				Status:      row.Status,
				SubmittedAt: row.SubmittedAt.UTC(),
				UserEmail:   row.UserEmail.String,
				Images:      []string{},
			})
		}
		if row.Filepath.Valid {
			views[pos].Images = append(views[pos].Images, row.Filepath.String)
		}
	}
	return views
}
