package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNotifyService_checkAndNotify(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := &FakeEventStorage{
		GetBetweenFunc: func(_ context.Context, from, to time.Time) ([]entity.Event, error) {
			assert.Equal(t, now, from)
			return []entity.Event{
				{ID: "day", Title: "Tomorrow", Date: now.Add(23*time.Hour + 30*time.Minute)},
				{ID: "hour", Title: "Soon", Date: now.Add(58 * time.Minute)},
				{ID: "later", Title: "Later", Date: now.Add(5 * time.Hour)},
			}, nil
		},
	}
	notifications := &FakeNotificationStorage{
		GetUnnotifiedFunc: func(_ context.Context, eventID string, _ entity.NotificationType) ([]dto.EventAttendee, error) {
			return []dto.EventAttendee{
				{StudentID: "s1-" + eventID, Email: "ann@uni.edu"},
				{StudentID: "s2-" + eventID, Email: "bob@uni.edu"},
			}, nil
		},
	}
	mailer := &FakeMailer{
		SendFunc: func(to, _, _ string) error {
			if to == "bob@uni.edu" {
				return errors.New("mailbox full")
			}
			return nil
		},
	}
	s := NewNotifyService(logger.Nop(), mailer, events, notifications, "https://clubs.test/")

	s.checkAndNotify(ctx, now)

	sent := mailer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Reminder: Tomorrow", sent[0].Subject)
	assert.Equal(t, "Reminder: Soon", sent[1].Subject)

	created := notifications.Created()
	require.Len(t, created, 2)
	assert.Equal(t, entity.EventNotification{EventID: "day", StudentID: "s1-day", Type: entity.NotificationTypeDay}, created[0])
	assert.Equal(t, entity.EventNotification{EventID: "hour", StudentID: "s1-hour", Type: entity.NotificationTypeHour}, created[1])
}

func TestNotifyService_Mails(t *testing.T) {
	mailer := &FakeMailer{}
	s := NewNotifyService(logger.Nop(), mailer, &FakeEventStorage{}, &FakeNotificationStorage{}, "https://clubs.test/")

	require.NoError(t, s.SendPasswordReset("ann@uni.edu", "Ann", "tok"))
	require.NoError(t, s.SendRequestResolved("ann@uni.edu", entity.ClubRequest{Name: "Chess", Status: entity.ClubRequestApproved}))
	require.NoError(t, s.SendRequestResolved("ann@uni.edu", entity.ClubRequest{Name: "Chess", Status: entity.ClubRequestPending}))

	sent := mailer.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Body, "https://clubs.test/reset-password?token=tok")
	assert.Equal(t, "Club request approved", sent[1].Subject)
}

func TestNotifyService_LogHook(t *testing.T) {
	delivered := make(chan string, 1)
	mailer := &FakeMailer{
		SendFunc: func(_, subject, _ string) error {
			delivered <- subject
			return nil
		},
	}
	s := NewNotifyService(logger.Nop(), mailer, &FakeEventStorage{}, &FakeNotificationStorage{}, "")
	hook := s.LogHook("ops@uni.edu", zapcore.ErrorLevel)

	hook(types.Log{Level: zapcore.InfoLevel, Message: "ignored"})
	hook(types.Log{Level: zapcore.ErrorLevel, Message: "boom"})

	select {
	case subject := <-delivered:
		assert.Equal(t, "cu-clubs ERROR", subject)
	case <-time.After(time.Second):
		t.Fatal("error log was not mailed")
	}
	assert.Len(t, delivered, 0)
}
