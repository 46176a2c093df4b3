// Package permission is the capability-check boundary. The workflow engine
// only ever asks "does this staff member hold this capability"; how the
// capability table is administered lives elsewhere.
package permission

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Oracle answers capability checks for workflow actors.
type Oracle interface {
	HasPermission(ctx context.Context, staffID, capability string) (bool, error)
}

// SQLOracle reads the staff_capabilities table.
type SQLOracle struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLOracle creates a capability-table backed oracle
func NewSQLOracle(db *sql.DB, logger *zap.Logger) *SQLOracle {
	return &SQLOracle{
		db:     db,
		logger: logger,
	}
}

// HasPermission returns true when the staff member holds the capability
func (o *SQLOracle) HasPermission(ctx context.Context, staffID, capability string) (bool, error) {
	query := `SELECT 1 FROM staff_capabilities WHERE staff_id = ? AND capability = ?`

	var one int
	err := o.db.QueryRowContext(ctx, query, staffID, capability).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		o.logger.Error("Capability lookup failed",
			zap.String("staff_id", staffID),
			zap.String("capability", capability),
			zap.Error(err))
		return false, fmt.Errorf("capability lookup failed: %w", err)
	}
	return true, nil
}

// Grant adds a capability; used by seed tooling and tests
func (o *SQLOracle) Grant(ctx context.Context, staffID, capability string) error {
	query := `INSERT OR IGNORE INTO staff_capabilities (staff_id, capability) VALUES (?, ?)`
	if _, err := o.db.ExecContext(ctx, query, staffID, capability); err != nil {
		return fmt.Errorf("failed to grant capability: %w", err)
	}
	return nil
}

// StaticOracle is an in-memory oracle keyed by staff id.
type StaticOracle map[string][]string

// HasPermission returns true when the static grant list contains the capability
func (o StaticOracle) HasPermission(_ context.Context, staffID, capability string) (bool, error) {
	for _, c := range o[staffID] {
		if c == capability {
			return true, nil
		}
	}
	return false, nil
}
