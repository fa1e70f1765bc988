package validator_test

import (
	"context"
	"testing"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestAuthValidator_ValidateRegister(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty", "", "", validator.ErrInvalidInput},
		{"bad email", "not-an-email", "password123", validator.ErrInvalidInput},
		{"short password", "a@test.com", "short", validator.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepo)
			v := validator.NewAuthValidator(users)

			err := v.ValidateRegister(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, tc.want)
			users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthValidator_ValidateRegister_EmailTaken(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByEmail", mock.Anything, "taken@test.com").Return(&model.User{ID: 1}, nil)
	users.On("FindByEmail", mock.Anything, "free@test.com").Return(nil, nil)

	v := validator.NewAuthValidator(users)

	err := v.ValidateRegister(context.Background(), " taken@test.com ", "password123")
	assert.ErrorIs(t, err, validator.ErrEmailAlreadyUsed)

	assert.NoError(t, v.ValidateRegister(context.Background(), "free@test.com", "password123"))
}

func TestAuthValidator_ValidateLogin(t *testing.T) {
	v := validator.NewAuthValidator(new(MockUserRepo))

	assert.NoError(t, v.ValidateLogin(context.Background(), "a@test.com", "x"))
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "a@test.com", ""), validator.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(context.Background(), "nope", "x"), validator.ErrInvalidInput)
}

func TestAuthValidator_ValidateForceLogout(t *testing.T) {
	v := validator.NewAuthValidator(new(MockUserRepo))

	assert.NoError(t, v.ValidateForceLogout(context.Background(), 3))
	assert.ErrorIs(t, v.ValidateForceLogout(context.Background(), 0), validator.ErrInvalidInput)
}
