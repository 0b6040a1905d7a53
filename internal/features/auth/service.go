package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/config"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/email"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/features/user"
	"realty-crm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountCleaner removes data owned by a deleted account
type AccountCleaner interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserSummary, string, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	ForgotPassword(ctx context.Context, addr string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, token string) error
	CheckToken(ctx context.Context, req CheckTokenRequest) error
	ResendVerification(ctx context.Context, addr string) error
	CurrentUser(ctx context.Context, userID string) (*user.User, error)
	Permissions(ctx context.Context, userID string) (permission.Flags, string, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) error
	DeleteAccount(ctx context.Context, userID, password string) error
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	UserService  user.UserService
	Tokens       TokenRepository
	Mailer       email.EmailService
	AuditService audit.AuditService
	Cleaners     []AccountCleaner
	Config       *config.Config
	Logger       *zap.Logger
}

func NewAuthService(
	userRepo user.UserRepository,
	userService user.UserService,
	tokens TokenRepository,
	mailer email.EmailService,
	auditService audit.AuditService,
	cfg *config.Config,
	logger *zap.Logger,
	cleaners []AccountCleaner,
) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		UserService:  userService,
		Tokens:       tokens,
		Mailer:       mailer,
		AuditService: auditService,
		Cleaners:     cleaners,
		Config:       cfg,
		Logger:       logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*UserSummary, string, error) {
	if err := validate.Struct(req); err != nil {
		return nil, "", err
	}

	if _, err := s.UserRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, "", apperr.Conflict("Email already exists")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, "", err
	}

	u, err := s.UserService.CreateUser(ctx, user.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     "user",
	})
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(utils.TokenAccess, u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return nil, "", apperr.Unexpected("Failed to register user", err)
	}
	return summary(u), token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Auth("Invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, apperr.Auth("Invalid credentials")
	}

	session, err := issueSession(u)
	if err != nil {
		return nil, err
	}

	s.AuditService.LogChange(utils.WithClaims(ctx, &utils.UserClaims{UserID: u.ID.Hex()}),
		common_models.AuditActionLogin, "users", u.ID.Hex(), nil)
	return session, nil
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Refresh token is required")
	}
	claims, err := utils.ValidateToken(refreshToken, utils.TokenRefresh)
	if err != nil {
		return nil, apperr.Auth("Invalid refresh token")
	}

	u, err := s.findUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return issueSession(u)
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return apperr.Validation("Email is required")
	}

	u, err := s.UserRepo.FindByEmail(ctx, addr)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	token, err := utils.GenerateToken(utils.TokenReset, u.ID.Hex(), u.Email, "")
	if err != nil {
		return apperr.Unexpected("Failed to process password reset request", err)
	}
	if err := s.Tokens.Save(ctx, ResetToken, u.ID, token, utils.TTL(utils.TokenReset)); err != nil {
		return apperr.Unexpected("Failed to process password reset request", err)
	}

	link := s.link("/reset-password", token)
	s.mail(ctx, u.Email, "Password Reset Request", "reset",
		"Click the following link to reset your password: "+link, link)
	return nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	stored, err := s.consume(ctx, ResetToken, utils.TokenReset, req.Token)
	if err != nil {
		return err
	}

	hash, err := user.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.UserRepo.UpdateFields(ctx, stored.UserID, bson.M{"password": hash, "updatedAt": time.Now()}); err != nil {
		return err
	}
	return s.Tokens.Delete(ctx, ResetToken, stored.ID)
}

func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validation("Token is required")
	}

	stored, err := s.consume(ctx, VerifyToken, utils.TokenVerify, token)
	if err != nil {
		return err
	}

	if err := s.UserRepo.UpdateFields(ctx, stored.UserID, bson.M{"emailVerified": true, "updatedAt": time.Now()}); err != nil {
		return err
	}
	return s.Tokens.Delete(ctx, VerifyToken, stored.ID)
}

// CheckToken validates a reset or verification token without using it up
func (s *AuthServiceImpl) CheckToken(ctx context.Context, req CheckTokenRequest) error {
	if req.Token == "" || req.Type == "" {
		return apperr.Validation("Token and type are required")
	}
	tt, ok := tokenTypes[req.Type]
	if !ok {
		return apperr.Validation("Invalid token type")
	}

	_, err := s.consume(ctx, tt.kind, tt.jwt, req.Token)
	return err
}

func (s *AuthServiceImpl) ResendVerification(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return apperr.Validation("Email is required")
	}

	u, err := s.UserRepo.FindByEmail(ctx, addr)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if u.EmailVerified {
		return apperr.Validation("Email is already verified")
	}
	return s.sendVerification(ctx, u.ID, u.Email)
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID string) (*user.User, error) {
	return s.findUser(ctx, userID)
}

// Permissions returns the effective flags and the stored role
func (s *AuthServiceImpl) Permissions(ctx context.Context, userID string) (permission.Flags, string, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return permission.Flags{}, "", err
	}
	return permission.Effective(u.Role, u.Permissions), u.Role, nil
}

// UpdateProfile changes contact fields only. A new email address is marked
// unverified and sent a verification link.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Username != nil {
		set["username"] = *in.Username
	}
	if in.Phone != nil {
		set["phone"] = *in.Phone
	}

	newEmail := ""
	if in.Email != nil {
		addr := strings.ToLower(strings.TrimSpace(*in.Email))
		if addr != u.Email {
			taken, err := s.UserRepo.EmailTaken(ctx, addr, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("Email already exists")
			}
			set["email"] = addr
			set["emailVerified"] = false
			newEmail = addr
		}
	}

	if err := s.UserRepo.UpdateFields(ctx, u.ID, set); err != nil {
		return err
	}

	if newEmail != "" {
		return s.sendVerification(ctx, u.ID, newEmail)
	}
	return nil
}

// DeleteAccount removes the caller after checking their password, then
// clears everything they own. Cleanup failures are logged.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, userID, password string) error {
	if password == "" {
		return apperr.Validation("Password is required")
	}
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return apperr.Validation("Invalid password")
	}

	if err := s.UserRepo.Delete(ctx, u.ID); err != nil {
		return err
	}

	for _, c := range s.Cleaners {
		if err := c.DeleteByUser(ctx, u.ID.Hex()); err != nil {
			s.Logger.Warn("Account cleanup failed",
				zap.String("userId", u.ID.Hex()),
				zap.String("cleaner", fmt.Sprintf("%T", c)),
				zap.Error(err))
		}
	}

	s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "users", u.ID.Hex(), nil)
	return nil
}

func (s *AuthServiceImpl) findUser(ctx context.Context, userID string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	return s.UserRepo.FindByID(ctx, oid)
}

// consume checks a single-use token's signature, type and stored record.
// Callers delete the record once the token has been used.
func (s *AuthServiceImpl) consume(ctx context.Context, kind TokenKind, want utils.TokenType, token string) (*StoredToken, error) {
	claims, err := utils.ValidateToken(token, want)
	if err != nil {
		if errors.Is(err, utils.ErrWrongTokenType) {
			return nil, apperr.Validation("Invalid token type")
		}
		return nil, apperr.Validation("Invalid or expired token")
	}

	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Validation("Invalid or expired token")
	}

	stored, err := s.Tokens.FindValid(ctx, kind, oid, token)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("Invalid or expired token")
		}
		return nil, err
	}
	return stored, nil
}

func (s *AuthServiceImpl) sendVerification(ctx context.Context, userID primitive.ObjectID, addr string) error {
	token, err := utils.GenerateToken(utils.TokenVerify, userID.Hex(), addr, "")
	if err != nil {
		return apperr.Unexpected("Failed to send verification email", err)
	}
	if err := s.Tokens.Save(ctx, VerifyToken, userID, token, utils.TTL(utils.TokenVerify)); err != nil {
		return apperr.Unexpected("Failed to send verification email", err)
	}

	link := s.link("/verify-email", token)
	s.mail(ctx, addr, "Verify Your Email", "verify",
		"Click the following link to verify your email: "+link, link)
	return nil
}

func (s *AuthServiceImpl) link(path, token string) string {
	return strings.TrimRight(s.Config.AppURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// mail sends a templated message; delivery problems are logged, not returned
func (s *AuthServiceImpl) mail(ctx context.Context, to, subject, tmpl, text, link string) {
	html, err := renderEmail(tmpl, link)
	if err != nil {
		s.Logger.Error("Failed to render email", zap.String("template", tmpl), zap.Error(err))
		return
	}
	if _, err := s.Mailer.Send(ctx, email.SendInput{
		To:      email.Recipients{to},
		Subject: subject,
		Text:    text,
		HTML:    html,
	}); err != nil {
		s.Logger.Warn("Failed to send email", zap.String("subject", subject), zap.Error(err))
	}
}

func issueSession(u *user.User) (*Session, error) {
	access, err := utils.GenerateToken(utils.TokenAccess, u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return nil, apperr.Unexpected("Failed to issue token", err)
	}
	refresh, err := utils.GenerateToken(utils.TokenRefresh, u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return nil, apperr.Unexpected("Failed to issue token", err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: *summary(u)}, nil
}

func summary(u *user.User) *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
