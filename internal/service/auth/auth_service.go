package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"skybook/internal/domain"
	"skybook/internal/kafka"
	"skybook/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account is not verified")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrSessionExpired     = errors.New("session expired")
)

type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionStore is the single process-wide home for issued sessions. Handlers
// receive the authenticated identity through it instead of reading an ambient
// global token.
type SessionStore interface {
	SaveAuthSession(ctx context.Context, token, email string, ttl time.Duration) error
	GetAuthSession(ctx context.Context, token string) (string, error)
	DeleteAuthSession(ctx context.Context, token string) error
}

type CodeStore interface {
	SaveVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
	GetVerificationCode(ctx context.Context, email string) (string, error)
	DeleteVerificationCode(ctx context.Context, email string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type AuthService struct {
	users              repository.UserRepository
	sessions           SessionStore
	codes              CodeStore
	producer           Producer
	notificationsTopic string
	jwtSecret          []byte
	tokenTTL           time.Duration
	codeTTL            time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	sessions SessionStore,
	codes CodeStore,
	producer Producer,
	notificationsTopic string,
	jwtSecret string,
	tokenTTL, codeTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:              users,
		sessions:           sessions,
		codes:              codes,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		jwtSecret:          []byte(jwtSecret),
		tokenTTL:           tokenTTL,
		codeTTL:            codeTTL,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, errors.New("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.SendVerificationCode(ctx, user.Email); err != nil {
		log.Printf("WARNING: failed to send verification code to %s: %v", user.Email, err)
	}
	return user, nil
}

// SendVerificationCode issues a fresh 6-digit code and delivers it through
// the notifications topic. Re-sending replaces the previous code.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.codes.SaveVerificationCode(ctx, email, code, s.codeTTL); err != nil {
		return err
	}

	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	event := kafka.NotificationEvent{
		Type:    "verification",
		Email:   email,
		Subject: "Verify your account",
		Body:    fmt.Sprintf("Your verification code is %s", code),
	}
	return s.producer.Publish(ctx, s.notificationsTopic, email, event)
}

func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	stored, err := s.codes.GetVerificationCode(ctx, email)
	if err != nil {
		return err
	}
	if stored == "" || stored != code {
		return ErrInvalidCode
	}

	if err := s.users.MarkVerified(ctx, email); err != nil {
		return err
	}
	return s.codes.DeleteVerificationCode(ctx, email)
}

// Login checks credentials, mints a JWT and registers it in the session
// store. Only verified accounts may log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return "", nil, ErrNotVerified
	}

	now := time.Now()
	claims := Claims{
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.SaveAuthSession(ctx, token, user.Email, s.tokenTTL); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteAuthSession(ctx, token)
}

// Authenticate resolves a bearer token to the email it was issued to. Both
// the signature and the live session are required, so logout takes effect
// immediately regardless of token expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrSessionExpired
	}

	email, err := s.sessions.GetAuthSession(ctx, token)
	if err != nil {
		return "", err
	}
	if email == "" || email != claims.Email {
		return "", ErrSessionExpired
	}
	return email, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is required")
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, email, string(hash))
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
