package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/calendar"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/location"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	qr "github.com/Badsnus/cu-clubs-bot/server/pkg/qrcode"
	"github.com/xuri/excelize/v2"
)

type RegistrationStorage interface {
	Create(ctx context.Context, eventID, studentID string) (*entity.Registration, error)
	Delete(ctx context.Context, eventID, studentID string) error
	Get(ctx context.Context, eventID, studentID string) (*entity.Registration, error)
	GetByID(ctx context.Context, id string) (*entity.Registration, error)
	SetAttended(ctx context.Context, eventID, studentID string, attended bool) (*entity.Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int64, error)
	CountAttendedByEventID(ctx context.Context, eventID string) (int64, error)
	GetAttendees(ctx context.Context, eventID string) ([]dto.EventAttendee, error)
	GetByStudentID(ctx context.Context, studentID string) ([]dto.StudentRegistration, error)
}

type registrationEventStorage interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
}

type registrationUserStorage interface {
	Get(ctx context.Context, id string) (*entity.User, error)
}

type registrationNotifier interface {
	SendRegistrationConfirmed(to string, event entity.Event) error
}

// RegistrationService handles seats, attendance and everything derived from a registration.
type RegistrationService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage      RegistrationStorage
	eventStorage registrationEventStorage
	clubStorage  clubGetter
	userStorage  registrationUserStorage
	notifier     registrationNotifier

	qrCFG qr.Config
}

func NewRegistrationService(
	logger *types.Logger,
	metrics metricsRecorder,
	storage RegistrationStorage,
	eventStorage registrationEventStorage,
	clubStorage clubGetter,
	userStorage registrationUserStorage,
	notifier registrationNotifier,
	qrCFG qr.Config,
) *RegistrationService {
	return &RegistrationService{
		logger:       logger,
		metrics:      metrics,
		storage:      storage,
		eventStorage: eventStorage,
		clubStorage:  clubStorage,
		userStorage:  userStorage,
		notifier:     notifier,
		qrCFG:        qrCFG,
	}
}

// Register claims a seat for the caller. The capacity check and the insert are atomic.
// A confirmation is mailed after the commit; a failed mail is only logged.
func (s *RegistrationService) Register(ctx context.Context, caller dto.Identity, eventID string) (registration *entity.Registration, err error) {
	defer func() { s.metrics.Record("registration_create", err) }()

	if err = requireParticipant(caller); err != nil {
		return nil, err
	}

	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsOver(0) {
		return nil, errorz.ErrEventOver
	}

	registration, err = s.storage.Create(ctx, eventID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("register for event %s: %w", eventID, err)
	}
	s.logger.Infof("student registered (event_id=%s, student_id=%s)", eventID, caller.UserID)

	student, err := s.userStorage.Get(ctx, caller.UserID)
	if err != nil {
		s.logger.Errorf("failed to load student %s for confirmation: %v", caller.UserID, err)
		return registration, nil
	}
	if err := s.notifier.SendRegistrationConfirmed(student.Email, *event); err != nil {
		s.logger.Errorf("failed to send registration confirmation (event_id=%s, student_id=%s): %v", eventID, caller.UserID, err)
	}
	return registration, nil
}

// Cancel gives the caller's seat back.
func (s *RegistrationService) Cancel(ctx context.Context, caller dto.Identity, eventID string) (err error) {
	defer func() { s.metrics.Record("registration_cancel", err) }()

	if err = s.storage.Delete(ctx, eventID, caller.UserID); err != nil {
		return fmt.Errorf("cancel registration for event %s: %w", eventID, err)
	}
	s.logger.Infof("registration cancelled (event_id=%s, student_id=%s)", eventID, caller.UserID)
	return nil
}

// MarkAttendance sets the attended flag of a student's registration. Repeating it is a no-op.
func (s *RegistrationService) MarkAttendance(ctx context.Context, caller dto.Identity, eventID, studentID string, attended bool) (registration *entity.Registration, err error) {
	defer func() { s.metrics.Record("registration_attendance", err) }()

	if _, err = s.requireEventAdmin(ctx, caller, eventID); err != nil {
		return nil, err
	}
	return s.storage.SetAttended(ctx, eventID, studentID, attended)
}

// CheckIn marks attendance from a scanned ticket, whose payload is the registration id.
func (s *RegistrationService) CheckIn(ctx context.Context, caller dto.Identity, eventID, registrationID string) (registration *entity.Registration, err error) {
	defer func() { s.metrics.Record("registration_check_in", err) }()

	if _, err = s.requireEventAdmin(ctx, caller, eventID); err != nil {
		return nil, err
	}
	registration, err = s.storage.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if registration.EventID != eventID {
		return nil, errorz.ErrRegistrationNotFound
	}
	return s.storage.SetAttended(ctx, eventID, registration.StudentID, true)
}

func (s *RegistrationService) requireEventAdmin(ctx context.Context, caller dto.Identity, eventID string) (*entity.Event, error) {
	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, event.ClubID); err != nil {
		return nil, err
	}
	return event, nil
}

// Attendees lists who registered for the event. Only the club admin sees the list.
func (s *RegistrationService) Attendees(ctx context.Context, caller dto.Identity, eventID string) ([]dto.EventAttendee, error) {
	if _, err := s.requireEventAdmin(ctx, caller, eventID); err != nil {
		return nil, err
	}
	return s.storage.GetAttendees(ctx, eventID)
}

func (s *RegistrationService) MyRegistrations(ctx context.Context, caller dto.Identity) ([]dto.StudentRegistration, error) {
	return s.storage.GetByStudentID(ctx, caller.UserID)
}

type EventStats struct {
	Registered int64 `json:"registered"`
	Attended   int64 `json:"attended"`
}

func (s *RegistrationService) Stats(ctx context.Context, caller dto.Identity, eventID string) (*EventStats, error) {
	if _, err := s.requireEventAdmin(ctx, caller, eventID); err != nil {
		return nil, err
	}
	registered, err := s.storage.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attended, err := s.storage.CountAttendedByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &EventStats{Registered: registered, Attended: attended}, nil
}

// ExportAttendees renders the attendee list as an XLSX workbook.
func (s *RegistrationService) ExportAttendees(ctx context.Context, caller dto.Identity, eventID string) (*bytes.Buffer, error) {
	attendees, err := s.Attendees(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	return attendeesToXLSX(attendees)
}

func attendeesToXLSX(attendees []dto.EventAttendee) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	_ = f.SetCellValue(sheet, "A1", "Name")
	_ = f.SetCellValue(sheet, "B1", "Email")
	_ = f.SetCellValue(sheet, "C1", "Registered at")
	_ = f.SetCellValue(sheet, "D1", "Attended")
	for i, attendee := range attendees {
		row := strconv.Itoa(i + 2)
		_ = f.SetCellValue(sheet, "A"+row, attendee.Name)
		_ = f.SetCellValue(sheet, "B"+row, attendee.Email)
		_ = f.SetCellValue(sheet, "C"+row, attendee.RegisteredAt.In(location.Location()).Format(dateLayout))
		_ = f.SetCellValue(sheet, "D"+row, attendee.Attended)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Calendar exports the caller's registrations as an iCalendar document.
func (s *RegistrationService) Calendar(ctx context.Context, caller dto.Identity) ([]byte, error) {
	registrations, err := s.storage.GetByStudentID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	entries := make([]calendar.Entry, 0, len(registrations))
	for _, registration := range registrations {
		entries = append(entries, calendar.Entry{
			ID:       registration.EventID,
			Title:    registration.Title,
			Location: registration.Location,
			Start:    registration.Date,
		})
	}
	return calendar.Export(entries)
}
