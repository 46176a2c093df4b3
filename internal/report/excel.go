// Package report produces the approval register: an Excel workbook listing
// requests and their step history, the export clerks work from.
package report

import (
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// RegisterExporter builds approval register workbooks
type RegisterExporter struct {
	store  *repository.Store
	logger *zap.Logger
}

// NewRegisterExporter creates a new register exporter
func NewRegisterExporter(store *repository.Store, logger *zap.Logger) *RegisterExporter {
	return &RegisterExporter{
		store:  store,
		logger: logger,
	}
}

var requestHeaders = []string{"Request ID", "Type", "Requestor", "Staff ID", "Department", "Status", "Submitted At"}
var stepHeaders = []string{"Request ID", "Seq", "Step", "Role", "Status", "Approver", "Acted At", "Comments"}

// Export writes the register for the filtered request set and returns the
// workbook for the caller to stream or save.
func (e *RegisterExporter) Export(filter repository.ListFilter) (*excelize.File, error) {
	requests, err := e.store.Requests().List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	f := excelize.NewFile()
	const reqSheet = "Requests"
	const stepSheet = "Approval Steps"

	f.SetSheetName(f.GetSheetName(0), reqSheet)
	if _, err := f.NewSheet(stepSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	writeRow(f, reqSheet, 1, requestHeaders)
	writeRow(f, stepSheet, 1, stepHeaders)

	stepRow := 2
	for i, req := range requests {
		submitted := ""
		if req.SubmittedAt != nil {
			submitted = req.SubmittedAt.Format(time.RFC3339)
		}
		writeRow(f, reqSheet, i+2, []string{
			req.ID, req.Type.String(), req.RequestorName, req.StaffID,
			req.Department, req.Status, submitted,
		})

		steps, err := e.store.Steps().ListByRequest(req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load steps for %s: %w", req.ID, err)
		}
		for _, step := range steps {
			actedAt := ""
			if step.ActedAt != nil {
				actedAt = step.ActedAt.Format(time.RFC3339)
			}
			writeRow(f, stepSheet, stepRow, []string{
				step.RequestID, fmt.Sprintf("%d", step.Seq), step.StepName,
				step.StepRole, step.Status, step.ApproverName, actedAt, step.Comments,
			})
			stepRow++
		}
	}

	e.logger.Info("Approval register exported",
		zap.Int("requests", len(requests)),
		zap.Int("steps", stepRow-2))

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}
