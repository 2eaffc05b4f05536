package services

import (
	"context"
	"time"

	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
)

// StageReport is the per-stage visit census
type StageReport struct {
	Counts map[models.VisitStage]int64 `json:"counts"`
	Total  int64                       `json:"total"`
}

// RevenueReport is the paid revenue over a date range
type RevenueReport struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Revenue float64 `json:"revenue"`
}

// AppointmentReport is the appointment census by status
type AppointmentReport struct {
	Counts map[models.AppointmentStatus]int64 `json:"counts"`
}

// ReportService produces read-only operational summaries
type ReportService struct {
	visitRepo *repository.VisitRepository
	apptRepo  *repository.AppointmentRepository
	invRepo   *repository.InventoryRepository
}

// NewReportService creates a new report service
func NewReportService(
	visitRepo *repository.VisitRepository,
	apptRepo *repository.AppointmentRepository,
	invRepo *repository.InventoryRepository,
) *ReportService {
	return &ReportService{
		visitRepo: visitRepo,
		apptRepo:  apptRepo,
		invRepo:   invRepo,
	}
}

// StageCounts reports how many active visits sit in each stage
func (s *ReportService) StageCounts(ctx context.Context, actor models.Actor) (*StageReport, error) {
	if err := authorize(actor, rbac.CapReportsView); err != nil {
		return nil, err
	}
	counts, err := s.visitRepo.CountByStage(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	report := &StageReport{Counts: counts}
	for _, n := range counts {
		report.Total += n
	}
	return report, nil
}

// Revenue sums paid visit totals across an inclusive date range. Dates are
// YYYY-MM-DD; an empty range defaults to the current day.
func (s *ReportService) Revenue(ctx context.Context, actor models.Actor, from, to string) (*RevenueReport, error) {
	if err := authorize(actor, rbac.CapReportsView); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	fromDate, toDate := today, today
	var err error
	if from != "" {
		if fromDate, err = time.Parse("2006-01-02", from); err != nil {
			return nil, apperrors.Validation("from must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if toDate, err = time.Parse("2006-01-02", to); err != nil {
			return nil, apperrors.Validation("to must be YYYY-MM-DD")
		}
	}
	if toDate.Before(fromDate) {
		return nil, apperrors.Validation("to must not be before from")
	}

	// The repository's upper bound is exclusive; include the whole to day
	revenue, err := s.visitRepo.SumPaidTotals(ctx, actor.ClinicID, fromDate, toDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &RevenueReport{
		From:    fromDate.Format("2006-01-02"),
		To:      toDate.Format("2006-01-02"),
		Revenue: revenue,
	}, nil
}

// Appointments reports the appointment census by status
func (s *ReportService) Appointments(ctx context.Context, actor models.Actor) (*AppointmentReport, error) {
	if err := authorize(actor, rbac.CapReportsView); err != nil {
		return nil, err
	}
	counts, err := s.apptRepo.CountByStatus(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &AppointmentReport{Counts: counts}, nil
}

// LowStock reports items at or below their reorder threshold
func (s *ReportService) LowStock(ctx context.Context, actor models.Actor) ([]models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapReportsView); err != nil {
		return nil, err
	}
	items, err := s.invRepo.ListBelowReorderLevel(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}
