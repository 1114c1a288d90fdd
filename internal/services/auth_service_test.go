package services

import (
	"testing"

	"github.com/kreqo/mytasks/internal/models"
	"github.com/kreqo/mytasks/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewAuthService(repository.NewUserRepository(db))
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := setupAuthService(t)

	user, err := svc.Signup(SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	loggedIn, err := svc.Login(LoginInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := setupAuthService(t)

	wrong := "different"
	tests := []struct {
		name  string
		input SignupInput
		want  error
	}{
		{"blank username", SignupInput{Username: "   ", Password: "supersecret"}, ErrUsernameRequired},
		{"username too long", SignupInput{Username: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Password: "supersecret"}, ErrUsernameTooLong},
		{"short password", SignupInput{Username: "bob", Password: "short"}, ErrPasswordTooShort},
		{"confirmation mismatch", SignupInput{Username: "bob", Password: "supersecret", PasswordConfirmation: &wrong}, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_SignupDuplicateUsername(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Signup(SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Signup(SignupInput{Username: "alice", Password: "othersecret"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Signup(SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUser(t *testing.T) {
	svc := setupAuthService(t)

	user, err := svc.Signup(SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	found, err := svc.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = svc.GetUser(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
