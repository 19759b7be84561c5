package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
)

const exportSheet = "Expenses"

var exportHeaders = []string{
	"ID", "Employee", "Employee ID", "Department", "Dept Head", "Site",
	"Unit", "Project", "Journey Date", "Return Date", "Advance",
	"Train Fare", "Hotel Fare", "Food Cost", "Total", "Status",
}

// ExportService produces a spreadsheet of the claims an actor may see.
// Used by accounts and admin for settlement runs.
type ExportService interface {
	ExportClaims(ctx context.Context, actor entity.Actor, filters visibility.Filters) ([]byte, error)
}

type exportServiceImpl struct {
	claimRepo  port.ClaimRepository
	lookupRepo port.LookupRepository
	logger     Logger
}

// NewExportService creates a new ExportService.
func NewExportService(claimRepo port.ClaimRepository, lookupRepo port.LookupRepository, logger Logger) ExportService {
	return &exportServiceImpl{
		claimRepo:  claimRepo,
		lookupRepo: lookupRepo,
		logger:     logger,
	}
}

// ExportClaims renders the actor's visible claims as an XLSX workbook,
// one row per claim. Visibility rules are identical to listing.
func (s *exportServiceImpl) ExportClaims(ctx context.Context, actor entity.Actor, filters visibility.Filters) ([]byte, error) {
	q := visibility.Scope(actor, filters)
	claims, err := s.claimRepo.List(ctx, q)
	if err != nil {
		s.logger.Error("Failed to list claims for export", "error", err, "role", actor.Role)
		return nil, fmt.Errorf("list claims: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	heads := map[string]string{}
	for row, c := range claims {
		returnDate := ""
		if c.ReturnDate != nil {
			returnDate = c.ReturnDate.Format(dateLayout)
		}
		head, err := s.departmentHead(ctx, heads, c.Department)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			c.ID, c.EmployeeName, c.EmployeeID, c.Department, head,
			c.SiteName, c.Unit, c.ProjectName, c.JourneyDate.Format(dateLayout),
			returnDate, c.AdvanceAmount, c.TrainFare, c.HotelFare,
			c.FoodCost, c.TotalExpense, c.Status,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Exported claims", "count", len(claims), "role", actor.Role)
	return buf.Bytes(), nil
}

// departmentHead resolves a department's head once per export run. A
// department missing from the lookup table is not an error.
func (s *exportServiceImpl) departmentHead(ctx context.Context, cache map[string]string, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if head, ok := cache[name]; ok {
		return head, nil
	}
	dept, err := s.lookupRepo.GetDepartmentByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get department: %w", err)
	}
	head := ""
	if dept != nil {
		head = dept.Head
	}
	cache[name] = head
	return head, nil
}
