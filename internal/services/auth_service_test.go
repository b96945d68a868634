package services

import (
	"context"
	"testing"
	"time"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubCache implements caching.CacheService over a plain map for the
// token blacklist paths. The catalog methods are never hit here.
type stubCache struct {
	strings map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{strings: make(map[string]string)}
}

func (c *stubCache) GetCanteen(context.Context, uuid.UUID) (*models.Canteen, error) {
	return nil, nil
}
func (c *stubCache) SetCanteen(context.Context, *models.Canteen, time.Duration) error { return nil }
func (c *stubCache) DeleteCanteen(context.Context, uuid.UUID) error                   { return nil }
func (c *stubCache) GetCategories(context.Context, uuid.UUID) ([]*models.Category, error) {
	return nil, nil
}
func (c *stubCache) SetCategories(context.Context, uuid.UUID, []*models.Category, time.Duration) error {
	return nil
}
func (c *stubCache) DeleteCategories(context.Context, uuid.UUID) error { return nil }
func (c *stubCache) GetMenuItems(context.Context, uuid.UUID) ([]*models.MenuItem, error) {
	return nil, nil
}
func (c *stubCache) SetMenuItems(context.Context, uuid.UUID, []*models.MenuItem, time.Duration) error {
	return nil
}
func (c *stubCache) DeleteMenuItems(context.Context, uuid.UUID) error        { return nil }
func (c *stubCache) InvalidateCanteenCache(context.Context, uuid.UUID) error { return nil }
func (c *stubCache) InvalidateAllCache(context.Context) error                { return nil }
func (c *stubCache) IsRateLimited(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

func (c *stubCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	c.strings[key] = value
	return nil
}

func (c *stubCache) GetString(_ context.Context, key string) (string, error) {
	return c.strings[key], nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	delete(c.strings, key)
	return nil
}

type roleServiceStub struct{}

func (roleServiceStub) Resolve(context.Context, uuid.UUID) (string, error) {
	return models.RoleStudent, nil
}

func (roleServiceStub) Assign(_ context.Context, _ uuid.UUID, role string) (string, error) {
	return role, nil
}

func (roleServiceStub) EnsureDefault(context.Context, uuid.UUID) (string, error) {
	return models.RoleStudent, nil
}

func newAuthFixture() (AuthService, *MockProfileRepo, *stubCache) {
	profileRepo := new(MockProfileRepo)
	cache := newStubCache()
	svc := NewAuthService(profileRepo, roleServiceStub{}, cache, "test-secret", 3600)
	return svc, profileRepo, cache
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepo) SetNotificationsEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, profileRepo, _ := newAuthFixture()
	existing := &models.Profile{ID: uuid.New(), Email: "taken@campus.edu"}
	profileRepo.On("GetByEmail", mock.Anything, "taken@campus.edu").Return(existing, nil)

	_, err := svc.Signup(context.Background(), "taken@campus.edu", "Someone", "password123", models.RoleStudent)

	assert.ErrorIs(t, err, ErrEmailTaken)
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_HashesPasswordAndIssuesToken(t *testing.T) {
	svc, profileRepo, _ := newAuthFixture()
	profileRepo.On("GetByEmail", mock.Anything, "new@campus.edu").Return(nil, nil)

	var created *models.Profile
	profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Profile")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Profile)
		}).Return(nil)

	resp, err := svc.Signup(context.Background(), "new@campus.edu", "New Student", "password123", models.RoleStudent)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, models.RoleStudent, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, profileRepo, _ := newAuthFixture()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	profile := &models.Profile{ID: uuid.New(), Email: "s@campus.edu", PasswordHash: string(hash)}
	profileRepo.On("GetByEmail", mock.Anything, "s@campus.edu").Return(profile, nil)

	_, err = svc.Login(context.Background(), "s@campus.edu", "battery-staple")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// Accounts provisioned through the federated provider have no password
// hash; password login must not accept an empty hash.
func TestLogin_FederatedAccountHasNoPassword(t *testing.T) {
	svc, profileRepo, _ := newAuthFixture()
	profile := &models.Profile{ID: uuid.New(), Email: "sso@campus.edu", PasswordHash: ""}
	profileRepo.On("GetByEmail", mock.Anything, "sso@campus.edu").Return(profile, nil)

	_, err := svc.Login(context.Background(), "sso@campus.edu", "")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc, _, _ := newAuthFixture()
	userID := uuid.New()

	resp, err := svc.GenerateToken(context.Background(), userID, models.RoleVendor)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, models.RoleVendor, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer, _, _ := newAuthFixture()
	resp, err := issuer.GenerateToken(context.Background(), uuid.New(), models.RoleStudent)
	require.NoError(t, err)

	verifier := NewAuthService(new(MockProfileRepo), roleServiceStub{}, newStubCache(), "other-secret", 3600)
	_, err = verifier.ValidateToken(context.Background(), resp.AccessToken)

	assert.Error(t, err)
}

func TestRevokeToken_BlocksFurtherUse(t *testing.T) {
	svc, _, _ := newAuthFixture()
	resp, err := svc.GenerateToken(context.Background(), uuid.New(), models.RoleStudent)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), resp.AccessToken))

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
