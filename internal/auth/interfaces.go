package auth

import (
	"context"

	"github.com/sonna/artists-backend/internal/database/models"
)

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*models.Session, error)
	SendVerificationCode(ctx context.Context, target string, vtype models.VerificationType) error
	VerifyCode(ctx context.Context, target, code string, vtype models.VerificationType) error
}

// Compile-time interface satisfaction check
var _ Authenticator = (*Service)(nil)
