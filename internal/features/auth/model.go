package auth

import (
	"regexp"
	"time"

	"realty-crm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenKind string

const (
	ResetToken  TokenKind = "passwordResetTokens"
	VerifyToken TokenKind = "emailVerificationTokens"
)

// StoredToken is a single-use token persisted alongside its JWT
type StoredToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CheckTokenRequest asks whether a reset or verification token is still usable
type CheckTokenRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// tokenTypes maps the public token type names to where they are stored
var tokenTypes = map[string]struct {
	kind TokenKind
	jwt  utils.TokenType
}{
	"password-reset":     {ResetToken, utils.TokenReset},
	"email-verification": {VerifyToken, utils.TokenVerify},
}

// ProfileUpdate is everything a user may change about themselves
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  string             `json:"role"`
}

type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserSummary `json:"user"`
}

type PasswordStrength struct {
	IsStrong       bool `json:"isStrong"`
	HasMinLength   bool `json:"hasMinLength"`
	HasUpperCase   bool `json:"hasUpperCase"`
	HasLowerCase   bool `json:"hasLowerCase"`
	HasNumbers     bool `json:"hasNumbers"`
	HasSpecialChar bool `json:"hasSpecialChar"`
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// CheckPasswordStrength reports which strength rules the password meets
func CheckPasswordStrength(password string) PasswordStrength {
	s := PasswordStrength{
		HasMinLength:   len(password) >= 8,
		HasUpperCase:   upperRe.MatchString(password),
		HasLowerCase:   lowerRe.MatchString(password),
		HasNumbers:     digitRe.MatchString(password),
		HasSpecialChar: specialRe.MatchString(password),
	}
	s.IsStrong = s.HasMinLength && s.HasUpperCase && s.HasLowerCase && s.HasNumbers && s.HasSpecialChar
	return s
}
