package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/location"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"go.uber.org/zap/zapcore"
)

const dateLayout = "02.01.2006 15:04"

type mailer interface {
	Send(to, subject, body string) error
}

type notifyEventStorage interface {
	GetBetween(ctx context.Context, from, to time.Time) ([]entity.Event, error)
}

type notificationStorage interface {
	Create(ctx context.Context, notification *entity.EventNotification) error
	GetUnnotified(ctx context.Context, eventID string, notificationType entity.NotificationType) ([]dto.EventAttendee, error)
}

// NotifyService composes and delivers every email of the platform and runs the
// event reminder scheduler.
type NotifyService struct {
	mailer              mailer
	eventStorage        notifyEventStorage
	notificationStorage notificationStorage

	logger  *types.Logger
	baseURL string
}

func NewNotifyService(
	logger *types.Logger,
	mailer mailer,
	eventStorage notifyEventStorage,
	notificationStorage notificationStorage,
	baseURL string,
) *NotifyService {
	return &NotifyService{
		mailer:              mailer,
		eventStorage:        eventStorage,
		notificationStorage: notificationStorage,
		logger:              logger,
		baseURL:             strings.TrimRight(baseURL, "/"),
	}
}

func (s *NotifyService) SendVerificationCode(to, name, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nyour verification code is %s\n\nIf you did not sign up, ignore this message.",
		name, code,
	)
	return s.mailer.Send(to, "Confirm your email", body)
}

func (s *NotifyService) SendPasswordReset(to, name, token string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nuse the link below to choose a new password:\n%s/reset-password?token=%s\n\n"+
			"If you did not ask for it, ignore this message.",
		name, s.baseURL, token,
	)
	return s.mailer.Send(to, "Password reset", body)
}

func (s *NotifyService) SendRequestResolved(to string, request entity.ClubRequest) error {
	var body string
	switch request.Status {
	case entity.ClubRequestApproved:
		body = fmt.Sprintf("Your request to found %q was approved. You are now its admin.", request.Name)
	case entity.ClubRequestRejected:
		body = fmt.Sprintf("Your request to found %q was rejected.", request.Name)
	case entity.ClubRequestPending:
		return nil
	default:
		return nil
	}
	return s.mailer.Send(to, "Club request "+strings.ToLower(string(request.Status)), body)
}

func (s *NotifyService) SendRegistrationConfirmed(to string, event entity.Event) error {
	body := fmt.Sprintf(
		"You are registered for %q.\n\nWhen: %s\nWhere: %s\n\nYour ticket: %s/events/%s/ticket",
		event.Title, event.Date.In(location.Location()).Format(dateLayout), event.Location, s.baseURL, event.ID,
	)
	return s.mailer.Send(to, "Registration confirmed", body)
}

// LogHook returns a log hook that mails entries at or above level to the given address.
func (s *NotifyService) LogHook(to string, level zapcore.Level) types.LogHook {
	return func(log types.Log) {
		if log.Level < level || strings.Contains(log.Message, "failed to send log") {
			return
		}
		go func() {
			body := fmt.Sprintf("%s [%s] %s\n%s\n\n%s",
				log.Timestamp.In(location.Location()).Format(time.RFC3339), log.Level, log.LoggerName, log.Caller, log.Message)
			if err := s.mailer.Send(to, "cu-clubs "+log.Level.CapitalString(), body); err != nil {
				s.logger.Errorf("failed to send log to %s: %v", to, err)
			}
		}()
	}
}

// StartNotifyScheduler starts the reminder scheduler. It stops when ctx is done.
func (s *NotifyService) StartNotifyScheduler(ctx context.Context) {
	s.logger.Info("Starting notify scheduler")
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Notify scheduler stopped")
				return
			case <-ticker.C:
				s.checkAndNotify(ctx, time.Now())
			}
		}
	}()
}

// checkAndNotify sends day reminders for events starting in 23-24 hours and hour
// reminders for events starting in 55-60 minutes.
func (s *NotifyService) checkAndNotify(ctx context.Context, now time.Time) {
	events, err := s.eventStorage.GetBetween(ctx, now, now.Add(25*time.Hour))
	if err != nil {
		s.logger.Errorf("failed to get upcoming events: %v", err)
		return
	}

	for _, event := range events {
		timeUntilStart := event.Date.Sub(now)

		if timeUntilStart >= 23*time.Hour && timeUntilStart <= 24*time.Hour {
			s.logger.Infof("Sending day notification for event (event_id=%s)", event.ID)
			s.sendNotifications(ctx, event, entity.NotificationTypeDay)
		}

		if timeUntilStart >= 55*time.Minute && timeUntilStart <= 60*time.Minute {
			s.logger.Infof("Sending hour notification for event (event_id=%s)", event.ID)
			s.sendNotifications(ctx, event, entity.NotificationTypeHour)
		}
	}
}

// sendNotifications mails the reminder to every attendee that has not received it yet.
func (s *NotifyService) sendNotifications(ctx context.Context, event entity.Event, notificationType entity.NotificationType) {
	attendees, err := s.notificationStorage.GetUnnotified(ctx, event.ID, notificationType)
	if err != nil {
		s.logger.Errorf("failed to get unnotified attendees for event %s: %v", event.ID, err)
		return
	}

	var when string
	switch notificationType {
	case entity.NotificationTypeDay:
		when = "tomorrow"
	case entity.NotificationTypeHour:
		when = "in an hour"
	}

	for _, attendee := range attendees {
		body := fmt.Sprintf("%q starts %s (%s) at %s.",
			event.Title, when, event.Date.In(location.Location()).Format(dateLayout), event.Location)
		if err = s.mailer.Send(attendee.Email, "Reminder: "+event.Title, body); err != nil {
			s.logger.Errorf("failed to send %s notification to %s: %v", notificationType, attendee.StudentID, err)
			continue
		}

		err = s.notificationStorage.Create(ctx, &entity.EventNotification{
			EventID:   event.ID,
			StudentID: attendee.StudentID,
			Type:      notificationType,
		})
		if err != nil {
			s.logger.Errorf("failed to create notification record: %v", err)
		}
	}
}
