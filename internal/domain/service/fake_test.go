package service

import (
	"context"
	"sync"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
)

// ------------------------
// Fake Metrics
// ------------------------

type fakeMetrics struct {
	mu      sync.Mutex
	records map[string][]error
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{records: make(map[string][]error)}
}

func (f *fakeMetrics) Record(operation string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[operation] = append(f.records[operation], err)
}

func (f *fakeMetrics) Last(operation string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := f.records[operation]
	if len(errs) == 0 {
		return nil
	}
	return errs[len(errs)-1]
}

// ------------------------
// Fake Club Storage
// ------------------------

type FakeClubStorage struct {
	trace []string

	CreateWithAdminFunc func(ctx context.Context, club *entity.Club) (*entity.Club, error)
	GetFunc             func(ctx context.Context, id string) (*entity.Club, error)
	GetByAdminIDFunc    func(ctx context.Context, adminID string) (*entity.Club, error)
	GetWithAdminFunc    func(ctx context.Context, id string) (*dto.Club, error)
	ListFunc            func(ctx context.Context) ([]dto.Club, error)
	UpdateFunc          func(ctx context.Context, id string, update dto.ClubUpdate, newAdminID *string) (*entity.Club, error)
	DeleteFunc          func(ctx context.Context, id string) (*entity.Club, error)
	CountFunc           func(ctx context.Context) (int64, error)
}

func (f *FakeClubStorage) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeClubStorage) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeClubStorage) CreateWithAdmin(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	f.record("CreateWithAdmin")
	if f.CreateWithAdminFunc != nil {
		return f.CreateWithAdminFunc(ctx, club)
	}
	club.ID = "club-1"
	return club, nil
}

func (f *FakeClubStorage) Get(ctx context.Context, id string) (*entity.Club, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id)
	}
	return nil, errorz.ErrClubNotFound
}

func (f *FakeClubStorage) GetByAdminID(ctx context.Context, adminID string) (*entity.Club, error) {
	f.record("GetByAdminID")
	if f.GetByAdminIDFunc != nil {
		return f.GetByAdminIDFunc(ctx, adminID)
	}
	return nil, errorz.ErrClubNotFound
}

func (f *FakeClubStorage) GetWithAdmin(ctx context.Context, id string) (*dto.Club, error) {
	f.record("GetWithAdmin")
	if f.GetWithAdminFunc != nil {
		return f.GetWithAdminFunc(ctx, id)
	}
	return &dto.Club{ID: id}, nil
}

func (f *FakeClubStorage) List(ctx context.Context) ([]dto.Club, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return nil, nil
}

func (f *FakeClubStorage) Update(ctx context.Context, id string, update dto.ClubUpdate, newAdminID *string) (*entity.Club, error) {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, id, update, newAdminID)
	}
	return &entity.Club{ID: id}, nil
}

func (f *FakeClubStorage) Delete(ctx context.Context, id string) (*entity.Club, error) {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return &entity.Club{ID: id}, nil
}

func (f *FakeClubStorage) Count(ctx context.Context) (int64, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx)
	}
	return 0, nil
}

var _ ClubStorage = (*FakeClubStorage)(nil)

// ------------------------
// Fake User Storage
// ------------------------

type FakeUserStorage struct {
	trace []string

	CreateFunc         func(ctx context.Context, user *entity.User) (*entity.User, error)
	GetFunc            func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*entity.User, error)
	GetAllFunc         func(ctx context.Context) ([]entity.User, error)
	CountFunc          func(ctx context.Context) (int64, error)
	UpdateProfileFunc  func(ctx context.Context, id string, name, avatarURL *string) (*entity.User, error)
	MarkVerifiedFunc   func(ctx context.Context, id string) error
	SetResetTokenFunc  func(ctx context.Context, id, token string, expiry time.Time) error
	ResetPasswordFunc  func(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error)
	DeleteFunc         func(ctx context.Context, id string) error
	MakeSuperAdminFunc func(ctx context.Context, id string) (*entity.User, error)
}

func (f *FakeUserStorage) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeUserStorage) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeUserStorage) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	user.ID = "user-1"
	return user, nil
}

func (f *FakeUserStorage) Get(ctx context.Context, id string) (*entity.User, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id)
	}
	return nil, errorz.ErrUserNotFound
}

func (f *FakeUserStorage) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.record("GetByEmail")
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, errorz.ErrUserNotFound
}

func (f *FakeUserStorage) GetAll(ctx context.Context) ([]entity.User, error) {
	f.record("GetAll")
	if f.GetAllFunc != nil {
		return f.GetAllFunc(ctx)
	}
	return nil, nil
}

func (f *FakeUserStorage) Count(ctx context.Context) (int64, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx)
	}
	return 0, nil
}

func (f *FakeUserStorage) UpdateProfile(ctx context.Context, id string, name, avatarURL *string) (*entity.User, error) {
	f.record("UpdateProfile")
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(ctx, id, name, avatarURL)
	}
	return &entity.User{ID: id}, nil
}

func (f *FakeUserStorage) MarkVerified(ctx context.Context, id string) error {
	f.record("MarkVerified")
	if f.MarkVerifiedFunc != nil {
		return f.MarkVerifiedFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserStorage) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	f.record("SetResetToken")
	if f.SetResetTokenFunc != nil {
		return f.SetResetTokenFunc(ctx, id, token, expiry)
	}
	return nil
}

func (f *FakeUserStorage) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error) {
	f.record("ResetPassword")
	if f.ResetPasswordFunc != nil {
		return f.ResetPasswordFunc(ctx, token, passwordHash, now)
	}
	return nil, errorz.ErrInvalidToken
}

func (f *FakeUserStorage) Delete(ctx context.Context, id string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeUserStorage) MakeSuperAdmin(ctx context.Context, id string) (*entity.User, error) {
	f.record("MakeSuperAdmin")
	if f.MakeSuperAdminFunc != nil {
		return f.MakeSuperAdminFunc(ctx, id)
	}
	return &entity.User{ID: id, Role: entity.RoleSuperAdmin}, nil
}

var _ UserStorage = (*FakeUserStorage)(nil)

// ------------------------
// Fake Club Request Storage
// ------------------------

type FakeClubRequestStorage struct {
	CreateFunc        func(ctx context.Context, request *entity.ClubRequest) (*entity.ClubRequest, error)
	GetFunc           func(ctx context.Context, id string) (*entity.ClubRequest, error)
	ListPendingFunc   func(ctx context.Context) ([]entity.ClubRequest, error)
	ListByStudentFunc func(ctx context.Context, studentID string) ([]entity.ClubRequest, error)
	ApproveFunc       func(ctx context.Context, id string) (*entity.ClubRequest, *entity.Club, error)
	RejectFunc        func(ctx context.Context, id string) (*entity.ClubRequest, error)
}

func (f *FakeClubRequestStorage) Create(ctx context.Context, request *entity.ClubRequest) (*entity.ClubRequest, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, request)
	}
	request.ID = "request-1"
	request.Status = entity.ClubRequestPending
	return request, nil
}

func (f *FakeClubRequestStorage) Get(ctx context.Context, id string) (*entity.ClubRequest, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id)
	}
	return nil, errorz.ErrRequestNotFound
}

func (f *FakeClubRequestStorage) ListPending(ctx context.Context) ([]entity.ClubRequest, error) {
	if f.ListPendingFunc != nil {
		return f.ListPendingFunc(ctx)
	}
	return nil, nil
}

func (f *FakeClubRequestStorage) ListByStudent(ctx context.Context, studentID string) ([]entity.ClubRequest, error) {
	if f.ListByStudentFunc != nil {
		return f.ListByStudentFunc(ctx, studentID)
	}
	return nil, nil
}

func (f *FakeClubRequestStorage) Approve(ctx context.Context, id string) (*entity.ClubRequest, *entity.Club, error) {
	if f.ApproveFunc != nil {
		return f.ApproveFunc(ctx, id)
	}
	return nil, nil, errorz.ErrRequestNotFound
}

func (f *FakeClubRequestStorage) Reject(ctx context.Context, id string) (*entity.ClubRequest, error) {
	if f.RejectFunc != nil {
		return f.RejectFunc(ctx, id)
	}
	return nil, errorz.ErrRequestNotFound
}

var _ ClubRequestStorage = (*FakeClubRequestStorage)(nil)

// ------------------------
// Fake Event Storage
// ------------------------

type FakeEventStorage struct {
	trace []string

	CreateFunc      func(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetFunc         func(ctx context.Context, id string) (*entity.Event, error)
	GetByClubIDFunc func(ctx context.Context, clubID string) ([]entity.Event, error)
	GetUpcomingFunc func(ctx context.Context, from time.Time) ([]entity.Event, error)
	GetBetweenFunc  func(ctx context.Context, from, to time.Time) ([]entity.Event, error)
	UpdateFunc      func(ctx context.Context, id string, update dto.EventUpdate) (*entity.Event, error)
	DeleteFunc      func(ctx context.Context, id string) error
	CountFunc       func(ctx context.Context) (int64, error)
}

func (f *FakeEventStorage) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeEventStorage) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeEventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, event)
	}
	event.ID = "event-1"
	return event, nil
}

func (f *FakeEventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id)
	}
	return nil, errorz.ErrEventNotFound
}

func (f *FakeEventStorage) GetByClubID(ctx context.Context, clubID string) ([]entity.Event, error) {
	f.record("GetByClubID")
	if f.GetByClubIDFunc != nil {
		return f.GetByClubIDFunc(ctx, clubID)
	}
	return nil, nil
}

func (f *FakeEventStorage) GetUpcoming(ctx context.Context, from time.Time) ([]entity.Event, error) {
	f.record("GetUpcoming")
	if f.GetUpcomingFunc != nil {
		return f.GetUpcomingFunc(ctx, from)
	}
	return nil, nil
}

func (f *FakeEventStorage) GetBetween(ctx context.Context, from, to time.Time) ([]entity.Event, error) {
	f.record("GetBetween")
	if f.GetBetweenFunc != nil {
		return f.GetBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (f *FakeEventStorage) Update(ctx context.Context, id string, update dto.EventUpdate) (*entity.Event, error) {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, id, update)
	}
	return &entity.Event{ID: id}, nil
}

func (f *FakeEventStorage) Delete(ctx context.Context, id string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeEventStorage) Count(ctx context.Context) (int64, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx)
	}
	return 0, nil
}

var (
	_ EventStorage       = (*FakeEventStorage)(nil)
	_ notifyEventStorage = (*FakeEventStorage)(nil)
)

// ------------------------
// Fake Registration Storage
// ------------------------

type FakeRegistrationStorage struct {
	trace []string

	CreateFunc                 func(ctx context.Context, eventID, studentID string) (*entity.Registration, error)
	DeleteFunc                 func(ctx context.Context, eventID, studentID string) error
	GetFunc                    func(ctx context.Context, eventID, studentID string) (*entity.Registration, error)
	GetByIDFunc                func(ctx context.Context, id string) (*entity.Registration, error)
	ExistsFunc                 func(ctx context.Context, eventID, studentID string) (bool, error)
	SetAttendedFunc            func(ctx context.Context, eventID, studentID string, attended bool) (*entity.Registration, error)
	CountByEventIDFunc         func(ctx context.Context, eventID string) (int64, error)
	CountAttendedByEventIDFunc func(ctx context.Context, eventID string) (int64, error)
	GetAttendeesFunc           func(ctx context.Context, eventID string) ([]dto.EventAttendee, error)
	GetByStudentIDFunc         func(ctx context.Context, studentID string) ([]dto.StudentRegistration, error)
}

func (f *FakeRegistrationStorage) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeRegistrationStorage) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRegistrationStorage) Create(ctx context.Context, eventID, studentID string) (*entity.Registration, error) {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, eventID, studentID)
	}
	return &entity.Registration{ID: "registration-1", EventID: eventID, StudentID: studentID}, nil
}

func (f *FakeRegistrationStorage) Delete(ctx context.Context, eventID, studentID string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, eventID, studentID)
	}
	return nil
}

func (f *FakeRegistrationStorage) Get(ctx context.Context, eventID, studentID string) (*entity.Registration, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, eventID, studentID)
	}
	return nil, errorz.ErrRegistrationNotFound
}

func (f *FakeRegistrationStorage) GetByID(ctx context.Context, id string) (*entity.Registration, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, errorz.ErrRegistrationNotFound
}

func (f *FakeRegistrationStorage) Exists(ctx context.Context, eventID, studentID string) (bool, error) {
	f.record("Exists")
	if f.ExistsFunc != nil {
		return f.ExistsFunc(ctx, eventID, studentID)
	}
	return false, nil
}

func (f *FakeRegistrationStorage) SetAttended(ctx context.Context, eventID, studentID string, attended bool) (*entity.Registration, error) {
	f.record("SetAttended")
	if f.SetAttendedFunc != nil {
		return f.SetAttendedFunc(ctx, eventID, studentID, attended)
	}
	return &entity.Registration{EventID: eventID, StudentID: studentID, Attended: attended}, nil
}

func (f *FakeRegistrationStorage) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	f.record("CountByEventID")
	if f.CountByEventIDFunc != nil {
		return f.CountByEventIDFunc(ctx, eventID)
	}
	return 0, nil
}

func (f *FakeRegistrationStorage) CountAttendedByEventID(ctx context.Context, eventID string) (int64, error) {
	f.record("CountAttendedByEventID")
	if f.CountAttendedByEventIDFunc != nil {
		return f.CountAttendedByEventIDFunc(ctx, eventID)
	}
	return 0, nil
}

func (f *FakeRegistrationStorage) GetAttendees(ctx context.Context, eventID string) ([]dto.EventAttendee, error) {
	f.record("GetAttendees")
	if f.GetAttendeesFunc != nil {
		return f.GetAttendeesFunc(ctx, eventID)
	}
	return nil, nil
}

func (f *FakeRegistrationStorage) GetByStudentID(ctx context.Context, studentID string) ([]dto.StudentRegistration, error) {
	f.record("GetByStudentID")
	if f.GetByStudentIDFunc != nil {
		return f.GetByStudentIDFunc(ctx, studentID)
	}
	return nil, nil
}

var (
	_ RegistrationStorage = (*FakeRegistrationStorage)(nil)
	_ registrationChecker = (*FakeRegistrationStorage)(nil)
)

// ------------------------
// Fake Announcement Storage
// ------------------------

type FakeAnnouncementStorage struct {
	CreateFunc      func(ctx context.Context, announcement *entity.Announcement) (*entity.Announcement, error)
	GetByClubIDFunc func(ctx context.Context, clubID string) ([]entity.Announcement, error)
	FeedFunc        func(ctx context.Context, studentID string) ([]dto.FeedItem, error)
	DeleteFunc      func(ctx context.Context, clubID, id string) error
}

func (f *FakeAnnouncementStorage) Create(ctx context.Context, announcement *entity.Announcement) (*entity.Announcement, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, announcement)
	}
	announcement.ID = "announcement-1"
	return announcement, nil
}

func (f *FakeAnnouncementStorage) GetByClubID(ctx context.Context, clubID string) ([]entity.Announcement, error) {
	if f.GetByClubIDFunc != nil {
		return f.GetByClubIDFunc(ctx, clubID)
	}
	return nil, nil
}

func (f *FakeAnnouncementStorage) Feed(ctx context.Context, studentID string) ([]dto.FeedItem, error) {
	if f.FeedFunc != nil {
		return f.FeedFunc(ctx, studentID)
	}
	return nil, nil
}

func (f *FakeAnnouncementStorage) Delete(ctx context.Context, clubID, id string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, clubID, id)
	}
	return nil
}

var _ AnnouncementStorage = (*FakeAnnouncementStorage)(nil)

// ------------------------
// Fake Membership Storage
// ------------------------

type FakeMembershipStorage struct {
	CreateFunc         func(ctx context.Context, studentID, clubID string) (*entity.Membership, error)
	DeleteFunc         func(ctx context.Context, studentID, clubID string) error
	ExistsFunc         func(ctx context.Context, studentID, clubID string) (bool, error)
	GetByStudentIDFunc func(ctx context.Context, studentID string) ([]dto.MyClub, error)
	GetByClubIDFunc    func(ctx context.Context, clubID string) ([]dto.ClubMember, error)
	CountByClubIDFunc  func(ctx context.Context, clubID string) (int64, error)
}

func (f *FakeMembershipStorage) Create(ctx context.Context, studentID, clubID string) (*entity.Membership, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, studentID, clubID)
	}
	return &entity.Membership{ID: "membership-1", StudentID: studentID, ClubID: clubID}, nil
}

func (f *FakeMembershipStorage) Delete(ctx context.Context, studentID, clubID string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, studentID, clubID)
	}
	return nil
}

func (f *FakeMembershipStorage) Exists(ctx context.Context, studentID, clubID string) (bool, error) {
	if f.ExistsFunc != nil {
		return f.ExistsFunc(ctx, studentID, clubID)
	}
	return false, nil
}

func (f *FakeMembershipStorage) GetByStudentID(ctx context.Context, studentID string) ([]dto.MyClub, error) {
	if f.GetByStudentIDFunc != nil {
		return f.GetByStudentIDFunc(ctx, studentID)
	}
	return nil, nil
}

func (f *FakeMembershipStorage) GetByClubID(ctx context.Context, clubID string) ([]dto.ClubMember, error) {
	if f.GetByClubIDFunc != nil {
		return f.GetByClubIDFunc(ctx, clubID)
	}
	return nil, nil
}

func (f *FakeMembershipStorage) CountByClubID(ctx context.Context, clubID string) (int64, error) {
	if f.CountByClubIDFunc != nil {
		return f.CountByClubIDFunc(ctx, clubID)
	}
	return 0, nil
}

var _ MembershipStorage = (*FakeMembershipStorage)(nil)

// ------------------------
// Fake Notification Storage
// ------------------------

type FakeNotificationStorage struct {
	mu      sync.Mutex
	created []entity.EventNotification

	CreateFunc        func(ctx context.Context, notification *entity.EventNotification) error
	GetUnnotifiedFunc func(ctx context.Context, eventID string, notificationType entity.NotificationType) ([]dto.EventAttendee, error)
}

func (f *FakeNotificationStorage) Create(ctx context.Context, notification *entity.EventNotification) error {
	f.mu.Lock()
	f.created = append(f.created, *notification)
	f.mu.Unlock()
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, notification)
	}
	return nil
}

func (f *FakeNotificationStorage) GetUnnotified(ctx context.Context, eventID string, notificationType entity.NotificationType) ([]dto.EventAttendee, error) {
	if f.GetUnnotifiedFunc != nil {
		return f.GetUnnotifiedFunc(ctx, eventID, notificationType)
	}
	return nil, nil
}

func (f *FakeNotificationStorage) Created() []entity.EventNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.EventNotification, len(f.created))
	copy(out, f.created)
	return out
}

var _ notificationStorage = (*FakeNotificationStorage)(nil)

// ------------------------
// Fake Code Storage and Mail Throttle
// ------------------------

type FakeCodeStorage struct {
	codes    map[string]dto.Code
	attempts map[string]int64

	SetFunc func(ctx context.Context, userID, code, codeContext string, expiration time.Duration) error
}

func NewFakeCodeStorage() *FakeCodeStorage {
	return &FakeCodeStorage{
		codes:    make(map[string]dto.Code),
		attempts: make(map[string]int64),
	}
}

func (f *FakeCodeStorage) Get(_ context.Context, userID string) (dto.Code, error) {
	return f.codes[userID], nil
}

func (f *FakeCodeStorage) Set(ctx context.Context, userID, code, codeContext string, expiration time.Duration) error {
	if f.SetFunc != nil {
		if err := f.SetFunc(ctx, userID, code, codeContext, expiration); err != nil {
			return err
		}
	}
	f.codes[userID] = dto.Code{Code: code, CodeContext: codeContext}
	delete(f.attempts, userID)
	return nil
}

func (f *FakeCodeStorage) Attempt(_ context.Context, userID string, _ time.Duration) (int64, error) {
	f.attempts[userID]++
	return f.attempts[userID], nil
}

func (f *FakeCodeStorage) Clear(_ context.Context, userID string) error {
	delete(f.codes, userID)
	delete(f.attempts, userID)
	return nil
}

var _ codeStorage = (*FakeCodeStorage)(nil)

type FakeMailThrottle struct {
	held map[string]bool
}

func NewFakeMailThrottle() *FakeMailThrottle {
	return &FakeMailThrottle{held: make(map[string]bool)}
}

func (f *FakeMailThrottle) Acquire(_ context.Context, email, emailContext string, _ time.Duration) (bool, error) {
	key := emailContext + ":" + email
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *FakeMailThrottle) Release(_ context.Context, email, emailContext string) error {
	delete(f.held, emailContext+":"+email)
	return nil
}

var _ mailThrottle = (*FakeMailThrottle)(nil)

// ------------------------
// Fake Notifier, Mailer, Hasher, Tokens, Assets
// ------------------------

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type FakeMailer struct {
	mu   sync.Mutex
	sent []sentMail

	SendFunc func(to, subject, body string) error
}

func (f *FakeMailer) Send(to, subject, body string) error {
	if f.SendFunc != nil {
		if err := f.SendFunc(to, subject, body); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	f.mu.Unlock()
	return nil
}

func (f *FakeMailer) Sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

var _ mailer = (*FakeMailer)(nil)

type FakeNotifier struct {
	trace []string
	codes []string

	Err error
}

func (f *FakeNotifier) SendVerificationCode(to, _, code string) error {
	f.trace = append(f.trace, "SendVerificationCode:"+to)
	f.codes = append(f.codes, code)
	return f.Err
}

func (f *FakeNotifier) SendPasswordReset(to, _, _ string) error {
	f.trace = append(f.trace, "SendPasswordReset:"+to)
	return f.Err
}

func (f *FakeNotifier) SendRequestResolved(to string, request entity.ClubRequest) error {
	f.trace = append(f.trace, "SendRequestResolved:"+to+":"+string(request.Status))
	return f.Err
}

func (f *FakeNotifier) SendRegistrationConfirmed(to string, event entity.Event) error {
	f.trace = append(f.trace, "SendRegistrationConfirmed:"+to+":"+event.ID)
	return f.Err
}

func (f *FakeNotifier) LastCode() string {
	if len(f.codes) == 0 {
		return ""
	}
	return f.codes[len(f.codes)-1]
}

var (
	_ userNotifier         = (*FakeNotifier)(nil)
	_ requestNotifier      = (*FakeNotifier)(nil)
	_ registrationNotifier = (*FakeNotifier)(nil)
)

// fakeHasher prefixes passwords instead of hashing them.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errorz.ErrInvalidCredentials
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(userID string, role entity.Role) (string, time.Time, error) {
	return "token:" + userID + ":" + string(role), time.Unix(0, 0), nil
}

type FakeAssets struct {
	saved []string

	SaveFunc func(ctx context.Context, kind string, data []byte) (string, error)
}

func (f *FakeAssets) Save(ctx context.Context, kind string, data []byte) (string, error) {
	f.saved = append(f.saved, kind)
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, kind, data)
	}
	return "https://assets.test/" + kind + "/1.png", nil
}

var _ assetStore = (*FakeAssets)(nil)
