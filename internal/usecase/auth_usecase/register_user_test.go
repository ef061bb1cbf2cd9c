package auth_test

import (
	"context"
	"testing"
	"time"

	"cocolytics/internal/domain/model"
	auth "cocolytics/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

func TestRegisterUser_Success(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, "maria@example.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4), &fixedClock{t: time.Now()})

	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Santos", out.User.Name)
	assert.Equal(t, model.RoleUser, out.User.Role)
	assert.True(t, out.User.IsActive)

	//レスポンスにハッシュは載せない
	assert.Empty(t, out.User.PasswordHash)

	repo.AssertExpectations(t)
}

func TestRegisterUser_ValidationFailures(t *testing.T) {
	repo := new(mockUserRepo)
	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4), &fixedClock{t: time.Now()})

	cases := []struct {
		name    string
		in      auth.RegisterUserInput
		wantErr error
	}{
		{"name required", auth.RegisterUserInput{Email: "a@b.com", Password: "correct horse battery"}, auth.ErrNameRequired},
		{"bad email", auth.RegisterUserInput{Name: "A", Email: "not-an-email", Password: "correct horse battery"}, auth.ErrInvalidEmailFormat},
		{"short password", auth.RegisterUserInput{Name: "A", Email: "a@b.com", Password: "short"}, auth.ErrPasswordTooShort},
		{"weak password", auth.RegisterUserInput{Name: "A", Email: "a@b.com", Password: "123456789012"}, auth.ErrWeakPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	//バリデーションで落ちたらDBは呼ばれない
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, "taken@example.com").
		Return(&model.User{ID: 1, Email: "taken@example.com"}, nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4), &fixedClock{t: time.Now()})

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name:     "A",
		Email:    "taken@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create")
}

func TestBcryptHasherAndVerifier_RoundTrip(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4)
	verifier := auth.NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.True(t, verifier.Verify("correct horse battery", hashed))
	assert.False(t, verifier.Verify("wrong password!!", hashed))
}
