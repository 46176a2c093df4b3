package report

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	"github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"github.com/arslant84/syntra.production-sub009/migrations"
	"github.com/arslant84/syntra.production-sub009/pkg/database"
)

func newTestExporter(t *testing.T) (*RegisterExporter, *repository.Store) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(migrations.Files))

	requests := repository.NewRequestRepository(db.DB, logger)
	steps := repository.NewStepRepository(db.DB, logger)
	store := repository.NewStore(db, requests, steps, logger)
	return NewRegisterExporter(store, logger), store
}

func TestExport(t *testing.T) {
	exporter, store := newTestExporter(t)

	req := &entity.Request{
		ID:             "TRN-20260830-0001",
		Type:           entity.TypeTransport,
		RequestorName:  "Aida Karimova",
		StaffID:        "S1001",
		Department:     "Operations",
		RequestorEmail: "aida@example.com",
		Status:         workflow.StatusPendingFocal,
		AdditionalData: "{}",
	}
	require.NoError(t, store.CreateSubmitted(req, workflow.RoleDepartmentFocal, "Department Focal Review"))

	f, err := exporter.Export(repository.ListFilter{Limit: 100})
	require.NoError(t, err)
	defer f.Close()

	// Header row
	v, err := f.GetCellValue("Requests", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Request ID", v)

	// First request row
	v, err = f.GetCellValue("Requests", "A2")
	require.NoError(t, err)
	assert.Equal(t, "TRN-20260830-0001", v)

	v, err = f.GetCellValue("Requests", "F2")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingFocal, v)

	// Step sheet carries the pending first stage
	v, err = f.GetCellValue("Approval Steps", "D2")
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleDepartmentFocal, v)

	v, err = f.GetCellValue("Approval Steps", "E2")
	require.NoError(t, err)
	assert.Equal(t, entity.StepPending, v)
}

func TestExport_Empty(t *testing.T) {
	exporter, _ := newTestExporter(t)

	f, err := exporter.Export(repository.ListFilter{Limit: 100})
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Requests", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Request ID", v)

	v, err = f.GetCellValue("Requests", "A2")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestExport_FilterByStatus(t *testing.T) {
	exporter, store := newTestExporter(t)

	for i := 0; i < 2; i++ {
		req := &entity.Request{
			ID:             fmt.Sprintf("TRN-20260830-%04d", i+2),
			Type:           entity.TypeTransport,
			RequestorName:  "Aida Karimova",
			StaffID:        "S1001",
			Status:         workflow.StatusPendingFocal,
			AdditionalData: "{}",
		}
		require.NoError(t, store.CreateSubmitted(req, workflow.RoleDepartmentFocal, "Department Focal Review"))
	}

	f, err := exporter.Export(repository.ListFilter{Status: workflow.StatusApproved, Limit: 100})
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Requests", "A2")
	require.NoError(t, err)
	assert.Empty(t, v)
}
