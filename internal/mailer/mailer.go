package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sonna/artists-backend/internal/database/models"
	"gorm.io/gorm"
)

//go:embed templates
var templatesFS embed.FS

const contractSubject = "Digital Music Distribution Agreement - Sonna For Artists"

// Mailer renders and "sends" the distribution contract. Sending is a
// structured log plus an email_logs row; a real provider integration
// slots in behind SendContract without changing callers.
type Mailer struct {
	db       *gorm.DB
	logger   *slog.Logger
	contract *template.Template
}

func New(db *gorm.DB, logger *slog.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/contract.html")
	if err != nil {
		return nil, fmt.Errorf("parsing contract template: %w", err)
	}
	return &Mailer{db: db, logger: logger, contract: tmpl}, nil
}

type contractData struct {
	Date             string
	UserName         string
	UserEmail        string
	AccountTypeLabel string
	MaxArtists       int
}

// SendContract emails the distribution contract to the user on their
// first submission. Idempotent per user: a prior contract log for the
// same address short-circuits.
func (m *Mailer) SendContract(ctx context.Context, userID uuid.UUID, artistName string, accountType models.AccountType) error {
	var user models.User
	if err := m.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	if email == "" {
		// Phone-only accounts get no contract email; the contract is
		// available in-app.
		m.logger.Info("skipping contract email for phone-only account", "user_id", userID)
		return nil
	}

	var sent int64
	err := m.db.WithContext(ctx).Model(&models.EmailLog{}).
		Where("user_email = ? AND subject = ?", email, contractSubject).
		Count(&sent).Error
	if err != nil {
		return fmt.Errorf("checking prior contract: %w", err)
	}
	if sent > 0 {
		return nil
	}

	accountLabel := "Individual Artist"
	if accountType == models.AccountTypeLabel {
		accountLabel = "Label"
	}

	var body bytes.Buffer
	err = m.contract.Execute(&body, contractData{
		Date:             time.Now().Format("2006-01-02"),
		UserName:         artistName,
		UserEmail:        email,
		AccountTypeLabel: accountLabel,
		MaxArtists:       accountType.MaxArtists(),
	})
	if err != nil {
		return fmt.Errorf("rendering contract: %w", err)
	}

	m.logger.Info("sending distribution contract",
		"email", email,
		"subject", contractSubject,
		"bytes", body.Len(),
	)

	log := models.EmailLog{
		UserEmail: email,
		Subject:   contractSubject,
		Status:    "sent",
	}
	if err := m.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("recording email log: %w", err)
	}
	return nil
}
