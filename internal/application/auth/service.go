package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
	pkgtoken "github.com/schoolyard-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Verification record types.
const (
	verTypeOTP   = "otp"
	verTypeEmail = "email"
)

const otpTTL = 15 * time.Minute

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ValidateOTPResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error
	ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*ValidateOTPResult, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ValidateEmailToken(ctx context.Context, userID, token string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	sessionRepo      sessionStore
	jwtProvider      jwtSigner
	mailer           mailer
	smsSender        smsSender
	refreshTokenDur  time.Duration
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	SessionRepo      sessionStore
	JWTProvider      jwtSigner
	Mailer           mailer
	SMSSender        smsSender // optional, OTP falls back to email only
	RefreshTokenDur  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		sessionRepo:      deps.SessionRepo,
		jwtProvider:      deps.JWTProvider,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		refreshTokenDur:  deps.RefreshTokenDur,
	}
}

func (s *service) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	otp, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      verTypeOTP,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	if err := s.mailer.SendEmail(u.Email, "Password Recovery OTP", "Your OTP: "+otp); err != nil {
		return err
	}
	if s.smsSender != nil && u.Phone != nil && *u.Phone != "" {
		if err := s.smsSender.SendSMS(ctx, *u.Phone, "Your OTP: "+otp); err != nil {
			slog.Warn("failed to send OTP sms", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*ValidateOTPResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	v, err := s.verificationRepo.Get(ctx, u.UserID, verTypeOTP)
	if err != nil {
		return nil, fmt.Errorf("OTP not found: %w", domain.ErrNotFound)
	}
	if v.Code != req.OTP {
		return nil, fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("OTP expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Delete(ctx, u.UserID, verTypeOTP); err != nil {
		slog.Warn("failed to delete OTP verification record", "user_id", u.UserID, "err", err)
	}

	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &ValidateOTPResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	token, err := generateToken(32)
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    userID,
		Type:      verTypeEmail,
		Code:      token,
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Confirm your email", "Token: "+token)
}

func (s *service) ValidateEmailToken(ctx context.Context, userID, token string) error {
	v, err := s.verificationRepo.Get(ctx, userID, verTypeEmail)
	if err != nil {
		return fmt.Errorf("token not found: %w", domain.ErrNotFound)
	}
	if v.Code != token {
		return fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"email_confirmed": true}); err != nil {
		return err
	}
	return s.verificationRepo.Delete(ctx, userID, verTypeEmail)
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
