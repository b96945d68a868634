package cart

import (
	"context"
	"testing"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore keeps carts in a map keyed the same way the redis store
// keys them, so per-canteen isolation is observable in tests.
type memStore struct {
	carts map[string]*Cart
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]*Cart)}
}

func (s *memStore) key(studentID, canteenID uuid.UUID) string {
	return studentID.String() + ":" + canteenID.String()
}

func (s *memStore) Load(_ context.Context, studentID, canteenID uuid.UUID) (*Cart, error) {
	if c, ok := s.carts[s.key(studentID, canteenID)]; ok {
		return c, nil
	}
	return &Cart{}, nil
}

func (s *memStore) Save(_ context.Context, studentID, canteenID uuid.UUID, c *Cart) error {
	s.carts[s.key(studentID, canteenID)] = c
	return nil
}

func (s *memStore) Delete(_ context.Context, studentID, canteenID uuid.UUID) error {
	delete(s.carts, s.key(studentID, canteenID))
	return nil
}

type MockMenuItemRepository struct {
	mock.Mock
}

func (m *MockMenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.MenuItem, error) {
	args := m.Called(ctx, canteenID)
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) ListAvailableByCategory(ctx context.Context, canteenID, categoryID uuid.UUID) ([]*models.MenuItem, error) {
	args := m.Called(ctx, canteenID, categoryID)
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, canteenID)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type serviceFixture struct {
	svc          *Service
	store        *memStore
	menuRepo     *MockMenuItemRepository
	categoryRepo *MockCategoryRepository
	studentID    uuid.UUID
	canteenID    uuid.UUID
}

func newServiceFixture() *serviceFixture {
	store := newMemStore()
	menuRepo := new(MockMenuItemRepository)
	categoryRepo := new(MockCategoryRepository)
	return &serviceFixture{
		svc:          NewService(store, menuRepo, categoryRepo),
		store:        store,
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
		studentID:    uuid.New(),
		canteenID:    uuid.New(),
	}
}

func (f *serviceFixture) fixedItem(price float64) *models.MenuItem {
	return &models.MenuItem{
		ID:          uuid.New(),
		CanteenID:   f.canteenID,
		Name:        "Masala Dosa",
		Price:       price,
		IsAvailable: true,
	}
}

func (f *serviceFixture) variableItem(categoryID uuid.UUID) *models.MenuItem {
	return &models.MenuItem{
		ID:          uuid.New(),
		CanteenID:   f.canteenID,
		CategoryID:  &categoryID,
		Name:        "Mango Shake",
		Price:       0,
		IsAvailable: true,
	}
}

func TestServiceAdd_FixedPriceItemUsesCatalogPrice(t *testing.T) {
	f := newServiceFixture()
	item := f.fixedItem(60)
	f.menuRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)

	chosen := 40.0
	c, err := f.svc.Add(context.Background(), f.studentID, f.canteenID, item.ID, &chosen)
	require.NoError(t, err)

	// Catalog price wins over whatever the client sent.
	assert.Equal(t, 60.0, c.Lines[0].Price)
}

func TestServiceAdd_VariablePriceRequiresTier(t *testing.T) {
	f := newServiceFixture()
	categoryID := uuid.New()
	item := f.variableItem(categoryID)
	category := &models.Category{ID: categoryID, CanteenID: f.canteenID, Name: "Juices"}

	f.menuRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	f.categoryRepo.On("GetByID", mock.Anything, categoryID).Return(category, nil)

	_, err := f.svc.Add(context.Background(), f.studentID, f.canteenID, item.ID, nil)
	assert.ErrorIs(t, err, ErrPriceTierRequired)

	bad := 35.0
	_, err = f.svc.Add(context.Background(), f.studentID, f.canteenID, item.ID, &bad)
	assert.ErrorIs(t, err, ErrInvalidPriceTier)

	good := 40.0
	c, err := f.svc.Add(context.Background(), f.studentID, f.canteenID, item.ID, &good)
	require.NoError(t, err)
	assert.Equal(t, 40.0, c.Lines[0].Price)
}

func TestServiceAdd_TiersOfSameItemStaySeparate(t *testing.T) {
	f := newServiceFixture()
	categoryID := uuid.New()
	item := f.variableItem(categoryID)
	category := &models.Category{ID: categoryID, CanteenID: f.canteenID, Name: "Indian Juice & Shakes"}

	f.menuRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	f.categoryRepo.On("GetByID", mock.Anything, categoryID).Return(category, nil)

	ctx := context.Background()
	small, large := 30.0, 50.0
	_, err := f.svc.Add(ctx, f.studentID, f.canteenID, item.ID, &small)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, f.studentID, f.canteenID, item.ID, &large)
	require.NoError(t, err)
	c, err := f.svc.Add(ctx, f.studentID, f.canteenID, item.ID, &small)
	require.NoError(t, err)

	assert.Len(t, c.Lines, 2)
	assert.Equal(t, 110.0, c.Total())
}

func TestServiceAdd_UnavailableOrForeignItemRejected(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	gone := f.fixedItem(20)
	gone.IsAvailable = false
	f.menuRepo.On("GetByID", mock.Anything, gone.ID).Return(gone, nil)
	_, err := f.svc.Add(ctx, f.studentID, f.canteenID, gone.ID, nil)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	foreign := f.fixedItem(20)
	foreign.CanteenID = uuid.New()
	f.menuRepo.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)
	_, err = f.svc.Add(ctx, f.studentID, f.canteenID, foreign.ID, nil)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	missingID := uuid.New()
	f.menuRepo.On("GetByID", mock.Anything, missingID).Return(nil, nil)
	_, err = f.svc.Add(ctx, f.studentID, f.canteenID, missingID, nil)
	assert.ErrorIs(t, err, ErrItemUnavailable)
}

func TestService_CartsArePerCanteen(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	otherCanteen := uuid.New()
	itemA := f.fixedItem(60)
	itemB := &models.MenuItem{ID: uuid.New(), CanteenID: otherCanteen, Name: "Idli", Price: 30, IsAvailable: true}
	f.menuRepo.On("GetByID", mock.Anything, itemA.ID).Return(itemA, nil)
	f.menuRepo.On("GetByID", mock.Anything, itemB.ID).Return(itemB, nil)

	_, err := f.svc.Add(ctx, f.studentID, f.canteenID, itemA.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, f.studentID, otherCanteen, itemB.ID, nil)
	require.NoError(t, err)

	// Clearing one canteen's cart leaves the other untouched.
	require.NoError(t, f.svc.Clear(ctx, f.studentID, f.canteenID))

	first, err := f.svc.Get(ctx, f.studentID, f.canteenID)
	require.NoError(t, err)
	assert.True(t, first.Empty())

	second, err := f.svc.Get(ctx, f.studentID, otherCanteen)
	require.NoError(t, err)
	assert.Len(t, second.Lines, 1)
	assert.Equal(t, itemB.ID, second.Lines[0].MenuItemID)
}
