package dto

import "github.com/sonna/artists-backend/internal/api/validation"

type RegisterRequest struct {
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Password    string  `json:"password"`
	CountryCode string  `json:"country_code,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	hasEmail := r.Email != nil && *r.Email != ""
	hasPhone := r.Phone != nil && *r.Phone != ""

	switch {
	case !hasEmail && !hasPhone:
		errors["identifier"] = "Email or phone is required"
	case hasEmail && hasPhone:
		errors["identifier"] = "Provide either email or phone, not both"
	case hasEmail && !validation.IsValidEmail(*r.Email):
		errors["email"] = "Invalid email format"
	case hasPhone && !validation.IsValidPhone(*r.Phone):
		errors["phone"] = "Phone must contain 8 to 15 digits"
	}

	if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Identifier == "" {
		errors["identifier"] = "Email or phone is required"
	} else if validation.IsEmailIdentifier(r.Identifier) {
		if !validation.IsValidEmail(r.Identifier) {
			errors["identifier"] = "Invalid email format"
		}
	} else if !validation.IsValidPhone(r.Identifier) {
		errors["identifier"] = "Phone must contain 8 to 15 digits"
	}

	if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

type VerificationSendRequest struct {
	Target string `json:"target"`
	Type   string `json:"type"` // "email" or "phone"
}

func (r VerificationSendRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Target == "" {
		errors["target"] = "Target is required"
	}
	if r.Type != "email" && r.Type != "phone" {
		errors["type"] = "Type must be email or phone"
	} else if r.Type == "email" && !validation.IsValidEmail(r.Target) {
		errors["target"] = "Invalid email format"
	} else if r.Type == "phone" && !validation.IsValidPhone(r.Target) {
		errors["target"] = "Phone must contain 8 to 15 digits"
	}

	return errors
}

type VerificationConfirmRequest struct {
	Target string `json:"target"`
	Code   string `json:"code"`
	Type   string `json:"type"`
}

func (r VerificationConfirmRequest) Validate() map[string]string {
	errors := VerificationSendRequest{Target: r.Target, Type: r.Type}.Validate()
	if len(r.Code) != 6 {
		errors["code"] = "Code must be 6 digits"
	}
	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	CountryCode   string `json:"country_code"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
}
