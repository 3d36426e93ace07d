package mailer_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/mailer"
	"github.com/sonna/artists-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMailer(t *testing.T) (*mailer.Mailer, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := mailer.New(db, logger)
	require.NoError(t, err)
	return m, db
}

func TestSendContract(t *testing.T) {
	m, db := newTestMailer(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, db)

	require.NoError(t, m.SendContract(ctx, user.ID, "Dulce Pontes", models.AccountTypeArtist))

	var logs []models.EmailLog
	require.NoError(t, db.Where("user_email = ?", *user.Email).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Contains(t, logs[0].Subject, "Distribution Agreement")
}

func TestSendContract_IdempotentPerUser(t *testing.T) {
	m, db := newTestMailer(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, db)

	require.NoError(t, m.SendContract(ctx, user.ID, "Dulce Pontes", models.AccountTypeArtist))
	require.NoError(t, m.SendContract(ctx, user.ID, "Dulce Pontes", models.AccountTypeArtist))

	var count int64
	db.Model(&models.EmailLog{}).Where("user_email = ?", *user.Email).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSendContract_PhoneOnlyAccount(t *testing.T) {
	m, db := newTestMailer(t)
	ctx := testutil.TestContext(t)

	phone := "+351912000111"
	user := &models.User{Phone: &phone, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	// No email address, no contract email, no error
	require.NoError(t, m.SendContract(ctx, user.ID, "MC Vitinho", models.AccountTypeArtist))

	var count int64
	db.Model(&models.EmailLog{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSendContract_UnknownUser(t *testing.T) {
	m, db := newTestMailer(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, db)
	db.Unscoped().Delete(user)

	assert.Error(t, m.SendContract(ctx, user.ID, "Ghost", models.AccountTypeArtist))
}
