package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"craftopia/internal/model"
	"craftopia/internal/repository"
	"craftopia/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (t *testValidator) Validate(i interface{}) error {
	return t.v.Struct(i)
}

func newTestEcho(includeDetail bool) *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	e.HTTPErrorHandler = NewErrorHandler(zap.NewNop(), includeDetail)
	return e
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in service.ProfileInput) (*model.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

// MockDecorService is a mock implementation of service.DecorService.
type MockDecorService struct {
	mock.Mock
}

func (m *MockDecorService) page(args mock.Arguments) (*service.PageResult[model.Decor], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult[model.Decor]), args.Error(1)
}

func (m *MockDecorService) one(args mock.Arguments) (*model.Decor, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Decor), args.Error(1)
}

func (m *MockDecorService) ListActive(ctx context.Context, params service.DecorListParams) (*service.PageResult[model.Decor], error) {
	return m.page(m.Called(ctx, params))
}

func (m *MockDecorService) Featured(ctx context.Context, limit int) ([]model.Decor, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Decor), args.Error(1)
}

func (m *MockDecorService) Search(ctx context.Context, params service.DecorListParams) (*service.PageResult[model.Decor], error) {
	return m.page(m.Called(ctx, params))
}

func (m *MockDecorService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*model.Decor, error) {
	return m.one(m.Called(ctx, id, includeInactive))
}

func (m *MockDecorService) Create(ctx context.Context, createdBy uuid.UUID, in service.DecorInput) (*model.Decor, error) {
	return m.one(m.Called(ctx, createdBy, in))
}

func (m *MockDecorService) Update(ctx context.Context, id uuid.UUID, in service.DecorInput) (*model.Decor, error) {
	return m.one(m.Called(ctx, id, in))
}

func (m *MockDecorService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDecorService) UpdateStock(ctx context.Context, id uuid.UUID, stock int, status *model.DecorStatus) (*model.Decor, error) {
	return m.one(m.Called(ctx, id, stock, status))
}

func (m *MockDecorService) ListAll(ctx context.Context, params service.DecorListParams) (*service.PageResult[model.Decor], error) {
	return m.page(m.Called(ctx, params))
}

func (m *MockDecorService) Stats(ctx context.Context) (*repository.DecorStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DecorStats), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}
