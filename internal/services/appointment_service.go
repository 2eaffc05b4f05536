package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/notification"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// AppointmentService manages the scheduling book and its handoff into the
// visit pipeline
type AppointmentService struct {
	apptRepo    *repository.AppointmentRepository
	patientRepo *repository.PatientRepository
	visits      *VisitService
	notifier    *notification.Notifier
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	apptRepo *repository.AppointmentRepository,
	patientRepo *repository.PatientRepository,
	visits *VisitService,
	notifier *notification.Notifier,
) *AppointmentService {
	return &AppointmentService{
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		visits:      visits,
		notifier:    notifier,
	}
}

// Schedule books an appointment slot for a patient
func (s *AppointmentService) Schedule(ctx context.Context, actor models.Actor, req *models.AppointmentRequest) (*models.Appointment, error) {
	if err := authorize(actor, rbac.CapAppointmentsManage); err != nil {
		return nil, err
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperrors.Validation("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperrors.Validation("time must be HH:MM")
	}
	if _, err := s.patientRepo.GetByID(ctx, actor.ClinicID, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient")
	}

	appt := &models.Appointment{
		ClinicID:  actor.ClinicID,
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    models.AppointmentScheduled,
	}
	if err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, apperrors.Database(err)
	}
	return appt, nil
}

// List retrieves the clinic's appointments, optionally for one date
func (s *AppointmentService) List(ctx context.Context, actor models.Actor, date string) ([]models.Appointment, error) {
	if err := authorize(actor, rbac.CapAppointmentsView); err != nil {
		return nil, err
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, apperrors.Validation("date must be YYYY-MM-DD")
		}
	}
	appts, err := s.apptRepo.ListByClinic(ctx, actor.ClinicID, date)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return appts, nil
}

// Cancel marks a scheduled appointment cancelled. Only scheduled slots can
// be cancelled; a concurrent check-in wins the race.
func (s *AppointmentService) Cancel(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := authorize(actor, rbac.CapAppointmentsManage); err != nil {
		return err
	}
	applied, err := s.apptRepo.UpdateStatusFrom(ctx, actor.ClinicID, id, models.AppointmentScheduled, models.AppointmentCancelled)
	if err != nil {
		return apperrors.Database(err)
	}
	if !applied {
		return apperrors.StaleWrite("appointment")
	}
	return nil
}

// CheckIn converts a scheduled appointment into a visit at the Check-In
// stage and marks the slot completed. The appointment flip happens first as
// a compare-and-swap so the same slot cannot open two visits.
func (s *AppointmentService) CheckIn(ctx context.Context, actor models.Actor, id uuid.UUID, priority models.VisitPriority) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapAppointmentsManage); err != nil {
		return nil, err
	}

	appt, err := s.apptRepo.GetByID(ctx, actor.ClinicID, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment")
	}
	if appt.Status != models.AppointmentScheduled {
		return nil, apperrors.Validation("appointment is not scheduled")
	}

	applied, err := s.apptRepo.UpdateStatusFrom(ctx, actor.ClinicID, id, models.AppointmentScheduled, models.AppointmentCompleted)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !applied {
		return nil, apperrors.StaleWrite("appointment")
	}

	visit, err := s.visits.CheckIn(ctx, actor, &models.CheckInRequest{
		PatientID: appt.PatientID,
		Priority:  priority,
	})
	if err != nil {
		// The slot is already burned; put it back so staff can retry
		if _, rbErr := s.apptRepo.UpdateStatusFrom(ctx, actor.ClinicID, id, models.AppointmentCompleted, models.AppointmentScheduled); rbErr != nil {
			log.Error().Err(rbErr).Str("appointment_id", id.String()).Msg("Failed to restore appointment after check-in failure")
		}
		return nil, err
	}
	return visit, nil
}

// RemindUpcoming sends reminder SMS for every scheduled appointment on the
// given date. Intended to be driven by a daily scheduler or an admin
// action; send failures never fail the sweep.
func (s *AppointmentService) RemindUpcoming(ctx context.Context, actor models.Actor, date string) (int, error) {
	if err := authorize(actor, rbac.CapAppointmentsManage); err != nil {
		return 0, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return 0, apperrors.Validation("date must be YYYY-MM-DD")
	}

	appts, err := s.apptRepo.ListByClinic(ctx, actor.ClinicID, date)
	if err != nil {
		return 0, apperrors.Database(err)
	}

	sent := 0
	for _, appt := range appts {
		if appt.Status != models.AppointmentScheduled {
			continue
		}
		patient, err := s.patientRepo.GetByID(ctx, actor.ClinicID, appt.PatientID)
		if err != nil {
			log.Warn().Str("patient_id", appt.PatientID.String()).Msg("Skipping reminder for missing patient")
			continue
		}
		s.notifier.SendSMSAsync(patient.Phone, "appointment-reminder", map[string]string{
			"patient_name": patient.Name,
			"date":         appt.Date,
			"time":         appt.Time,
		})
		sent++
	}
	return sent, nil
}
