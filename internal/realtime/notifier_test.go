package realtime

import (
	"context"
	"testing"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeAlert struct {
	userID  uuid.UUID
	message string
}

type fakeAlerter struct {
	toasts []fakeAlert
	pushes []fakeAlert
}

func (a *fakeAlerter) Toast(userID uuid.UUID, message string) {
	a.toasts = append(a.toasts, fakeAlert{userID: userID, message: message})
}

func (a *fakeAlerter) Push(userID uuid.UUID, title, body string) {
	a.pushes = append(a.pushes, fakeAlert{userID: userID, message: title + ": " + body})
}

type MockCanteenRepository struct {
	mock.Mock
}

func (m *MockCanteenRepository) Create(ctx context.Context, canteen *models.Canteen) error {
	args := m.Called(ctx, canteen)
	return args.Error(0)
}

func (m *MockCanteenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Canteen, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Canteen), args.Error(1)
}

func (m *MockCanteenRepository) GetByVendorID(ctx context.Context, vendorID uuid.UUID) (*models.Canteen, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Canteen), args.Error(1)
}

func (m *MockCanteenRepository) List(ctx context.Context, limit, offset int) ([]*models.Canteen, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Canteen), args.Error(1)
}

func (m *MockCanteenRepository) Update(ctx context.Context, canteen *models.Canteen) error {
	args := m.Called(ctx, canteen)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) SetNotificationsEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

type studentFixture struct {
	notifier    *StudentNotifier
	alerter     *fakeAlerter
	canteenRepo *MockCanteenRepository
	profileRepo *MockProfileRepository
	studentID   uuid.UUID
	canteenID   uuid.UUID
	refreshed   int
}

func newStudentFixture(notificationsEnabled bool) *studentFixture {
	f := &studentFixture{
		alerter:     &fakeAlerter{},
		canteenRepo: new(MockCanteenRepository),
		profileRepo: new(MockProfileRepository),
		studentID:   uuid.New(),
		canteenID:   uuid.New(),
	}
	f.canteenRepo.On("GetByID", mock.Anything, f.canteenID).
		Return(&models.Canteen{ID: f.canteenID, Name: "North Mess"}, nil)
	f.profileRepo.On("GetByID", mock.Anything, f.studentID).
		Return(&models.Profile{ID: f.studentID, NotificationsEnabled: notificationsEnabled}, nil)
	f.notifier = NewStudentNotifier(nil, f.canteenRepo, f.profileRepo, f.alerter,
		func(context.Context, uuid.UUID) { f.refreshed++ })
	return f
}

func (f *studentFixture) update(from, to string) OrderEvent {
	old := &models.Order{ID: uuid.New(), StudentID: f.studentID, CanteenID: f.canteenID, Status: from, TotalAmount: 90}
	updated := *old
	updated.Status = to
	return OrderEvent{Kind: EventUpdate, Old: old, New: &updated}
}

func TestStudentNotifier_ToastOnTransitionToReady(t *testing.T) {
	f := newStudentFixture(false)
	ctx := context.Background()

	f.notifier.Handle(ctx, f.studentID, f.update(models.OrderStatusPending, models.OrderStatusReady))

	assert.Len(t, f.alerter.toasts, 1)
	assert.Equal(t, f.studentID, f.alerter.toasts[0].userID)
	assert.Contains(t, f.alerter.toasts[0].message, "North Mess")
	assert.Equal(t, 1, f.refreshed)
}

// A full lifecycle fires the ready alert exactly once: the repeated
// ready write and the completion are both silent.
func TestStudentNotifier_AlertIsEdgeTriggered(t *testing.T) {
	f := newStudentFixture(false)
	ctx := context.Background()

	f.notifier.Handle(ctx, f.studentID, f.update(models.OrderStatusPending, models.OrderStatusReady))
	f.notifier.Handle(ctx, f.studentID, f.update(models.OrderStatusReady, models.OrderStatusReady))
	f.notifier.Handle(ctx, f.studentID, f.update(models.OrderStatusReady, models.OrderStatusCompleted))

	assert.Len(t, f.alerter.toasts, 1)
}

func TestStudentNotifier_InsertIsSilent(t *testing.T) {
	f := newStudentFixture(false)

	order := &models.Order{ID: uuid.New(), StudentID: f.studentID, CanteenID: f.canteenID, Status: models.OrderStatusPending}
	f.notifier.Handle(context.Background(), f.studentID, OrderEvent{Kind: EventInsert, New: order})

	assert.Empty(t, f.alerter.toasts)
	assert.Empty(t, f.alerter.pushes)
}

func TestStudentNotifier_PushFollowsPermission(t *testing.T) {
	granted := newStudentFixture(true)
	granted.notifier.Handle(context.Background(), granted.studentID, granted.update(models.OrderStatusPending, models.OrderStatusReady))
	assert.Len(t, granted.pushes(), 1)

	denied := newStudentFixture(false)
	denied.notifier.Handle(context.Background(), denied.studentID, denied.update(models.OrderStatusPending, models.OrderStatusReady))
	assert.Len(t, denied.toasts(), 1)
	assert.Empty(t, denied.pushes())
}

func (f *studentFixture) toasts() []fakeAlert { return f.alerter.toasts }
func (f *studentFixture) pushes() []fakeAlert { return f.alerter.pushes }

func TestStudentNotifier_CanteenNameFallback(t *testing.T) {
	alerter := &fakeAlerter{}
	canteenRepo := new(MockCanteenRepository)
	profileRepo := new(MockProfileRepository)
	studentID, canteenID := uuid.New(), uuid.New()

	canteenRepo.On("GetByID", mock.Anything, canteenID).Return(nil, nil)
	profileRepo.On("GetByID", mock.Anything, studentID).Return(nil, nil)

	notifier := NewStudentNotifier(nil, canteenRepo, profileRepo, alerter, nil)
	old := &models.Order{ID: uuid.New(), StudentID: studentID, CanteenID: canteenID, Status: models.OrderStatusPending}
	updated := *old
	updated.Status = models.OrderStatusReady
	notifier.Handle(context.Background(), studentID, OrderEvent{Kind: EventUpdate, Old: old, New: &updated})

	assert.Len(t, alerter.toasts, 1)
	assert.Contains(t, alerter.toasts[0].message, "the canteen")
}

func TestVendorNotifier_InsertToastsAndRefreshes(t *testing.T) {
	alerter := &fakeAlerter{}
	vendorID, canteenID := uuid.New(), uuid.New()
	refreshed := 0
	notifier := NewVendorNotifier(nil, alerter, vendorID, func(context.Context, uuid.UUID) { refreshed++ })

	order := &models.Order{ID: uuid.New(), CanteenID: canteenID, Status: models.OrderStatusPending, PickupCode: "4821"}
	notifier.Handle(context.Background(), canteenID, OrderEvent{Kind: EventInsert, New: order})

	assert.Len(t, alerter.toasts, 1)
	assert.Equal(t, vendorID, alerter.toasts[0].userID)
	assert.Equal(t, 1, refreshed)
}

func TestVendorNotifier_StatusChangeToastsOncePerChange(t *testing.T) {
	alerter := &fakeAlerter{}
	vendorID, canteenID := uuid.New(), uuid.New()
	refreshed := 0
	notifier := NewVendorNotifier(nil, alerter, vendorID, func(context.Context, uuid.UUID) { refreshed++ })

	old := &models.Order{ID: uuid.New(), CanteenID: canteenID, Status: models.OrderStatusPending, PickupCode: "4821"}
	updated := *old
	updated.Status = models.OrderStatusReady
	ctx := context.Background()

	notifier.Handle(ctx, canteenID, OrderEvent{Kind: EventUpdate, Old: old, New: &updated})
	// Same status on both sides, as after an unrelated column update.
	notifier.Handle(ctx, canteenID, OrderEvent{Kind: EventUpdate, Old: &updated, New: &updated})

	assert.Len(t, alerter.toasts, 1)
	assert.Contains(t, alerter.toasts[0].message, "4821")
	// Every event refreshes the board, toast or not.
	assert.Equal(t, 2, refreshed)
}
