package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	"go.uber.org/zap"
)

// RequestRepository handles travel request database operations
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new travel request
func (r *RequestRepository) Create(tx *sql.Tx, req *entity.Request) error {
	query := `
		INSERT INTO travel_requests (
			id, request_type, requestor_name, staff_id, department,
			requestor_email, status, submitted_at, additional_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query,
			req.ID, req.Type, req.RequestorName, req.StaffID, req.Department,
			req.RequestorEmail, req.Status, req.SubmittedAt, req.AdditionalData)
	} else {
		_, err = r.db.Exec(query,
			req.ID, req.Type, req.RequestorName, req.StaffID, req.Department,
			req.RequestorEmail, req.Status, req.SubmittedAt, req.AdditionalData)
	}

	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

const requestColumns = `
	id, request_type, requestor_name, staff_id, department,
	requestor_email, status, submitted_at, additional_data,
	created_at, updated_at
`

func scanRequest(row *sql.Row) (*entity.Request, error) {
	var req entity.Request
	var submittedAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.Type, &req.RequestorName, &req.StaffID, &req.Department,
		&req.RequestorEmail, &req.Status, &submittedAt, &req.AdditionalData,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if submittedAt.Valid {
		req.SubmittedAt = &submittedAt.Time
	}
	return &req, nil
}

// GetByID retrieves a request by id and type. Returns nil when not found.
func (r *RequestRepository) GetByID(id string, reqType entity.RequestType) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM travel_requests WHERE id = ? AND request_type = ?`

	req, err := scanRequest(r.db.QueryRow(query, id, reqType))
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// GetByIDTx retrieves a request inside a transaction so the engine's routing
// decision reads the same snapshot it writes to.
func (r *RequestRepository) GetByIDTx(tx *sql.Tx, id string, reqType entity.RequestType) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM travel_requests WHERE id = ? AND request_type = ?`

	req, err := scanRequest(tx.QueryRow(query, id, reqType))
	if err != nil {
		r.logger.Error("Failed to get request in tx", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// UpdateStatusIf sets the status only when the row still holds the expected
// current status. Returns the number of rows updated; zero means another
// transition won the race.
func (r *RequestRepository) UpdateStatusIf(tx *sql.Tx, id, newStatus, expectedStatus string) (int64, error) {
	query := `
		UPDATE travel_requests
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, newStatus, id, expectedStatus)
	} else {
		result, err = r.db.Exec(query, newStatus, id, expectedStatus)
	}

	if err != nil {
		r.logger.Error("Failed to update status",
			zap.String("id", id),
			zap.String("status", newStatus),
			zap.Error(err))
		return 0, fmt.Errorf("failed to update status: %w", err)
	}

	return result.RowsAffected()
}

// SetSubmittedAt stamps the submission time
func (r *RequestRepository) SetSubmittedAt(tx *sql.Tx, id string, at time.Time) error {
	query := `UPDATE travel_requests SET submitted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, at, id)
	} else {
		_, err = r.db.Exec(query, at, id)
	}

	if err != nil {
		return fmt.Errorf("failed to set submitted_at: %w", err)
	}
	return nil
}

// ListFilter narrows List results
type ListFilter struct {
	Type   entity.RequestType
	Status string
	Limit  int
	Offset int
}

// List retrieves requests with pagination and optional filters, newest first
func (r *RequestRepository) List(filter ListFilter) ([]*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM travel_requests WHERE 1=1`
	args := []interface{}{}

	if filter.Type != "" {
		query += " AND request_type = ?"
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.Request
	for rows.Next() {
		var req entity.Request
		var submittedAt sql.NullTime

		err := rows.Scan(
			&req.ID, &req.Type, &req.RequestorName, &req.StaffID, &req.Department,
			&req.RequestorEmail, &req.Status, &submittedAt, &req.AdditionalData,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		if submittedAt.Valid {
			req.SubmittedAt = &submittedAt.Time
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}
