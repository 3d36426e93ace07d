package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sonna/artists-backend/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers unknown identifier, inactive account
	// and wrong password alike, so a caller cannot probe for account
	// existence.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateIdentifier = errors.New("identifier already in use")
	ErrSessionExpired      = errors.New("session expired or not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCodeInvalid         = errors.New("verification code invalid or expired")
	ErrCodeThrottled       = errors.New("verification code recently sent")
	ErrIdentifierRequired  = errors.New("exactly one of email or phone is required")
)

const (
	verificationCodeTTL      = 10 * time.Minute
	verificationResendWindow = time.Minute
)

type Service struct {
	db         *gorm.DB
	redis      *redis.Client // optional, throttles code re-sends when present
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewService(db *gorm.DB, redisClient *redis.Client, sessionTTL time.Duration, logger *slog.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{db: db, redis: redisClient, sessionTTL: sessionTTL, logger: logger}
}

type RegisterInput struct {
	Email       *string
	Phone       *string
	Password    string
	CountryCode string
}

type LoginInput struct {
	Identifier string // email or phone, disambiguated by the presence of '@'
	Password   string
	IPAddress  string
	UserAgent  string
}

type AuthResponse struct {
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Session *models.Session `json:"session"`
}

// Register creates the user and immediately logs in with the same
// credentials, so a fresh registration always comes back with a session.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if (input.Email == nil) == (input.Phone == nil) {
		return nil, ErrIdentifierRequired
	}

	identifier := ""
	if input.Email != nil {
		identifier = *input.Email
	} else {
		identifier = *input.Phone
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateIdentifier
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking identifier: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		CountryCode:  input.CountryCode,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique index closes the race left by the pre-check.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.Login(ctx, LoginInput{Identifier: identifier, Password: input.Password})
}

// Login verifies credentials and issues a session. Multiple sessions per
// user may coexist; issuing a new one never revokes the others.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	field := "phone"
	if strings.Contains(input.Identifier, "@") {
		field = "email"
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where(field+" = ?", input.Identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsActive || !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := models.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("last_login", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	user.LastLogin = &now
	session.User = &user

	return &AuthResponse{Token: token, User: &user, Session: &session}, nil
}

// Resolve maps a session token to its session and user. Expired or unknown
// tokens yield ErrSessionExpired; callers treat that as unauthenticated,
// never as a failure. Expired rows found here are deleted on the spot.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	if session.Expired(time.Now()) {
		_ = s.db.WithContext(ctx).Delete(&models.Session{}, session.ID).Error
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout revokes the session holding the token. Revoking a token that no
// longer exists is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id any) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SendVerificationCode stores a one-time 6-digit code for the target.
// Delivery is a log line; a real mail/SMS integration slots in behind it.
func (s *Service) SendVerificationCode(ctx context.Context, target string, vtype models.VerificationType) error {
	if s.redis != nil {
		ok, err := s.redis.SetNX(ctx, "verify_throttle:"+target, 1, verificationResendWindow).Result()
		if err == nil && !ok {
			return ErrCodeThrottled
		}
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	record := models.VerificationCode{
		Target:    target,
		Code:      code,
		Type:      vtype,
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}

	field := "phone"
	if vtype == models.VerificationTypeEmail {
		field = "email"
	}
	var owner models.User
	if err := s.db.WithContext(ctx).Where(field+" = ?", target).First(&owner).Error; err == nil {
		record.UserID = &owner.ID
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("storing verification code: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("verification code issued", "target", target, "type", vtype, "code", code)
	}
	return nil
}

// VerifyCode redeems a code. A code redeems at most once, and only while
// unused and unexpired; success flips the user's verified flag.
func (s *Service) VerifyCode(ctx context.Context, target, code string, vtype models.VerificationType) error {
	var record models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("target = ? AND code = ? AND type = ? AND used = ? AND expires_at > ?",
			target, code, vtype, false, time.Now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return fmt.Errorf("looking up verification code: %w", err)
	}

	flag := "phone_verified"
	field := "phone"
	if vtype == models.VerificationTypeEmail {
		flag = "email_verified"
		field = "email"
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND used = ?", record.ID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent redeem.
			return ErrCodeInvalid
		}
		return tx.Model(&models.User{}).
			Where(field+" = ?", target).
			Update(flag, true).Error
	})
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generating verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
