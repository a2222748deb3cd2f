package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:user_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  college_name TEXT,
  avatar_url TEXT,
  role TEXT NOT NULL DEFAULT 'user',
  is_premium INTEGER NOT NULL DEFAULT 0,
  premium_expires_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  email_verified INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)

	return db
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:               "test-secret-key-with-at-least-32-chars!!",
			AccessTokenExpiry:    15 * time.Minute,
			RefreshTokenExpiry:   7 * 24 * time.Hour,
			RefreshTokenRotation: true,
		},
		Security: config.SecurityConfig{
			BcryptCost: bcrypt.MinCost,
		},
	}
}

func newUserService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupUserTestDB(t)
	return NewService(db, testAuthConfig()), db
}

func registerTestUser(t *testing.T, svc *Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(&RegisterRequest{
		Email:           email,
		Password:        "Sunlight42",
		ConfirmPassword: "Sunlight42",
		FullName:        "Asha Verma",
		CollegeName:     "Chandigarh University",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, db := newUserService(t)

	resp := registerTestUser(t, svc, "Asha@Example.com")

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)
	assert.Equal(t, RoleUser, resp.User.Role)
	assert.Empty(t, resp.User.Password)

	// Email is normalized to lowercase on create
	var stored User
	require.NoError(t, db.First(&stored, "id = ?", resp.User.ID).Error)
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerTestUser(t, svc, "asha@example.com")

	_, err := svc.Register(&RegisterRequest{
		Email:           "asha@example.com",
		Password:        "Sunlight42",
		ConfirmPassword: "Sunlight42",
		FullName:        "Impostor",
	})
	assert.Error(t, err)
}

func TestRegisterPasswordRules(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)

	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoNumbersHere"} {
		_, err := svc.Register(&RegisterRequest{
			Email:           "weak@example.com",
			Password:        password,
			ConfirmPassword: password,
			FullName:        "Weak Password",
		})
		assert.Error(t, err, "password %q should be rejected", password)
	}

	_, err := svc.Register(&RegisterRequest{
		Email:           "mismatch@example.com",
		Password:        "Sunlight42",
		ConfirmPassword: "Sunlight43",
		FullName:        "Mismatch",
	})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registerTestUser(t, svc, "asha@example.com")

	resp, err := svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Sunlight42"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.User.Password)

	_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "WrongPass1"})
	assert.Error(t, err)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Sunlight42"})
	assert.Error(t, err)
}

func TestLoginDeactivated(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerTestUser(t, svc, "asha@example.com")

	require.NoError(t, svc.DeactivateUser(registered.User.ID))

	_, err := svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Sunlight42"})
	assert.Error(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerTestUser(t, svc, "asha@example.com")

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	registered := registerTestUser(t, svc, "asha@example.com")

	err := svc.ChangePassword(registered.User.ID, "WrongPass1", "Moonrise77")
	assert.Error(t, err)

	require.NoError(t, svc.ChangePassword(registered.User.ID, "Sunlight42", "Moonrise77"))

	_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Sunlight42"})
	assert.Error(t, err)

	_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Moonrise77"})
	assert.NoError(t, err)
}

func TestUpdateProfileProtectedFields(t *testing.T) {
	t.Parallel()

	svc, db := newUserService(t)
	registered := registerTestUser(t, svc, "asha@example.com")

	updated, err := svc.UpdateProfile(registered.User.ID, map[string]interface{}{
		"full_name": "Asha V.",
		"role":      RoleAdmin,
		"is_active": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha V.", updated.FullName)

	var stored User
	require.NoError(t, db.First(&stored, "id = ?", registered.User.ID).Error)
	assert.Equal(t, RoleUser, stored.Role)
	assert.True(t, stored.IsActive)
}

func TestGrantPremium(t *testing.T) {
	t.Parallel()

	svc, db := newUserService(t)
	registered := registerTestUser(t, svc, "asha@example.com")

	expiresAt := time.Now().UTC().AddDate(0, 1, 0)
	require.NoError(t, svc.GrantPremium(registered.User.ID, expiresAt))

	var stored User
	require.NoError(t, db.First(&stored, "id = ?", registered.User.ID).Error)
	assert.True(t, stored.IsPremium)
	require.NotNil(t, stored.PremiumExpiresAt)
	assert.True(t, stored.HasActivePremium())

	assert.Error(t, svc.GrantPremium(uuid.New(), expiresAt))
}
