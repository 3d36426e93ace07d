package auth_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*auth.Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(db, nil, 7*24*time.Hour, logger), db
}

func strPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	svc, db := newTestService(t)
	ctx := testutil.TestContext(t)

	t.Run("email registration returns a session", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:    strPtr("ana@example.com"),
			Password: "securepassword123",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "ana@example.com", *resp.User.Email)
		assert.True(t, resp.User.IsActive)

		var count int64
		db.Model(&models.Session{}).Where("user_id = ?", resp.User.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("phone registration", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Phone:       strPtr("+351912345678"),
			Password:    "securepassword123",
			CountryCode: "PT",
		})
		require.NoError(t, err)
		assert.Equal(t, "+351912345678", *resp.User.Phone)
		assert.Nil(t, resp.User.Email)
	})

	t.Run("both identifiers rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:    strPtr("both@example.com"),
			Phone:    strPtr("+351911111111"),
			Password: "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrIdentifierRequired)
	})

	t.Run("neither identifier rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{Password: "securepassword123"})
		assert.ErrorIs(t, err, auth.ErrIdentifierRequired)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:    strPtr("ana@example.com"),
			Password: "anotherpassword",
		})
		assert.ErrorIs(t, err, auth.ErrDuplicateIdentifier)
	})
}

func TestLogin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := testutil.TestContext(t)

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    strPtr("joao@example.com"),
		Password: "securepassword123",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{
			Identifier: "joao@example.com",
			Password:   "securepassword123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotNil(t, resp.User.LastLogin)
	})

	t.Run("each login issues a distinct session", func(t *testing.T) {
		r1, err := svc.Login(ctx, auth.LoginInput{Identifier: "joao@example.com", Password: "securepassword123"})
		require.NoError(t, err)
		r2, err := svc.Login(ctx, auth.LoginInput{Identifier: "joao@example.com", Password: "securepassword123"})
		require.NoError(t, err)

		assert.NotEqual(t, r1.Token, r2.Token)

		// The first session survives the second login
		_, err = svc.Resolve(ctx, r1.Token)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Identifier: "joao@example.com",
			Password:   "wrongpassword",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Identifier: "nobody@example.com",
			Password:   "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive account gets the same error as a wrong password", func(t *testing.T) {
		db.Model(&models.User{}).Where("email = ?", "joao@example.com").Update("is_active", false)
		defer db.Model(&models.User{}).Where("email = ?", "joao@example.com").Update("is_active", true)

		_, err := svc.Login(ctx, auth.LoginInput{
			Identifier: "joao@example.com",
			Password:   "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestResolve(t *testing.T) {
	svc, db := newTestService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:    strPtr("maria@example.com"),
		Password: "securepassword123",
	})
	require.NoError(t, err)

	t.Run("valid token resolves with user", func(t *testing.T) {
		session, err := svc.Resolve(ctx, resp.Token)
		require.NoError(t, err)
		require.NotNil(t, session.User)
		assert.Equal(t, "maria@example.com", *session.User.Email)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "")
		assert.ErrorIs(t, err, auth.ErrSessionExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "no-such-token")
		assert.ErrorIs(t, err, auth.ErrSessionExpired)
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		login, err := svc.Login(ctx, auth.LoginInput{Identifier: "maria@example.com", Password: "securepassword123"})
		require.NoError(t, err)

		db.Model(&models.Session{}).
			Where("token = ?", login.Token).
			Update("expires_at", time.Now().Add(-time.Hour))

		_, err = svc.Resolve(ctx, login.Token)
		assert.ErrorIs(t, err, auth.ErrSessionExpired)

		var count int64
		db.Model(&models.Session{}).Where("token = ?", login.Token).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:    strPtr("rui@example.com"),
		Password: "securepassword123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Resolve(ctx, resp.Token)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	// Revoking an already revoked token is fine
	assert.NoError(t, svc.Logout(ctx, resp.Token))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestVerificationCodes(t *testing.T) {
	svc, db := newTestService(t)
	ctx := testutil.TestContext(t)

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    strPtr("ines@example.com"),
		Password: "securepassword123",
	})
	require.NoError(t, err)

	fetchCode := func(t *testing.T, target string) models.VerificationCode {
		t.Helper()
		var record models.VerificationCode
		err := db.Where("target = ? AND used = ?", target, false).
			Order("created_at DESC").
			First(&record).Error
		require.NoError(t, err)
		return record
	}

	t.Run("send and verify flips the flag", func(t *testing.T) {
		require.NoError(t, svc.SendVerificationCode(ctx, "ines@example.com", models.VerificationTypeEmail))

		record := fetchCode(t, "ines@example.com")
		assert.Len(t, record.Code, 6)
		require.NotNil(t, record.UserID)

		require.NoError(t, svc.VerifyCode(ctx, "ines@example.com", record.Code, models.VerificationTypeEmail))

		var user models.User
		require.NoError(t, db.Where("email = ?", "ines@example.com").First(&user).Error)
		assert.True(t, user.EmailVerified)
	})

	t.Run("a code redeems only once", func(t *testing.T) {
		require.NoError(t, svc.SendVerificationCode(ctx, "ines@example.com", models.VerificationTypeEmail))
		record := fetchCode(t, "ines@example.com")

		require.NoError(t, svc.VerifyCode(ctx, "ines@example.com", record.Code, models.VerificationTypeEmail))
		err := svc.VerifyCode(ctx, "ines@example.com", record.Code, models.VerificationTypeEmail)
		assert.ErrorIs(t, err, auth.ErrCodeInvalid)
	})

	t.Run("wrong code", func(t *testing.T) {
		require.NoError(t, svc.SendVerificationCode(ctx, "ines@example.com", models.VerificationTypeEmail))
		err := svc.VerifyCode(ctx, "ines@example.com", "000000", models.VerificationTypeEmail)
		// One-in-a-million chance the random code is 000000
		if err == nil {
			t.Skip("generated code collided with the probe value")
		}
		assert.ErrorIs(t, err, auth.ErrCodeInvalid)
	})

	t.Run("expired code", func(t *testing.T) {
		require.NoError(t, svc.SendVerificationCode(ctx, "ines@example.com", models.VerificationTypeEmail))
		record := fetchCode(t, "ines@example.com")

		db.Model(&models.VerificationCode{}).
			Where("id = ?", record.ID).
			Update("expires_at", time.Now().Add(-time.Minute))

		err := svc.VerifyCode(ctx, "ines@example.com", record.Code, models.VerificationTypeEmail)
		assert.ErrorIs(t, err, auth.ErrCodeInvalid)
	})
}
