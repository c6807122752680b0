package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"review-room/internal/model"
	"review-room/pkg/apierror"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserStore is the credential store the auth service writes through. The
// Mongo repository implements it in production, the memory repository in
// tests.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateProfile(ctx context.Context, id string, username string, email string) (model.User, error)
	SetPasswordReset(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string, newPasswordHash string, now time.Time) error
}

type AuthService struct {
	users            UserStore
	mailer           Mailer
	secret           []byte
	tokenTTL         time.Duration
	resetTTL         time.Duration
	exposeResetToken bool
	now              func() time.Time
}

func NewAuthService(users UserStore, mailer Mailer, secret string, tokenTTL time.Duration, resetTTL time.Duration, exposeResetToken bool) (*AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth service: signing secret is required")
	}
	if mailer == nil {
		mailer = LogMailer{}
	}

	return &AuthService{
		users:            users,
		mailer:           mailer,
		secret:           []byte(secret),
		tokenTTL:         tokenTTL,
		resetTTL:         resetTTL,
		exposeResetToken: exposeResetToken,
		now:              time.Now,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (model.AuthResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < minUsernameLength {
		return model.AuthResponse{}, apierror.BadRequest("username must be at least 3 characters", "username")
	}
	if !emailPattern.MatchString(email) {
		return model.AuthResponse{}, apierror.BadRequest("please provide a valid email address", "email")
	}
	if len(password) < minPasswordLength {
		return model.AuthResponse{}, apierror.BadRequest("password must be at least 8 characters long", "password")
	}

	// Checked independently so the response names the colliding field. The
	// race with a concurrent registration is resolved by the unique index:
	// the losing insert fails with the same conflict error.
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.AuthResponse{}, err
	} else if taken {
		return model.AuthResponse{}, apierror.Conflict("email already in use", "email")
	}
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.AuthResponse{}, err
	} else if taken {
		return model.AuthResponse{}, apierror.Conflict("username already taken", "username")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthResponse{}, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, User: user.Identity()}, nil
}

// Login accepts an email or a username as the identifier. Every failure mode
// collapses into the same generic error so the response does not reveal
// whether the account exists.
func (s *AuthService) Login(ctx context.Context, identifier string, password string) (model.AuthResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return model.AuthResponse{}, apierror.Unauthorized("invalid credentials")
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResponse{}, apierror.Unauthorized("invalid credentials")
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return model.AuthResponse{}, apierror.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, User: user.Identity()}, nil
}

// Authorize resolves an Authorization header value into an authenticated
// identity. Read-only: absent/malformed header, bad signature, elapsed
// expiry and a deleted account all reject with the same 401.
func (s *AuthService) Authorize(ctx context.Context, rawHeader string) (model.Identity, error) {
	rawHeader = strings.TrimSpace(rawHeader)
	if rawHeader == "" || !strings.HasPrefix(strings.ToLower(rawHeader), "bearer ") {
		return model.Identity{}, apierror.Unauthorized("missing or invalid authorization header")
	}

	tokenString := strings.TrimSpace(rawHeader[len("bearer "):])
	userID, err := s.verifyToken(tokenString)
	if err != nil {
		return model.Identity{}, apierror.Unauthorized("invalid or expired token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, apierror.Unauthorized("invalid or expired token")
	}
	if err != nil {
		return model.Identity{}, err
	}

	return user.Identity(), nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

// UpdateProfile changes username and/or email; an empty field keeps the
// current value.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, username string, email string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		username = user.Username
	} else if len(username) < minUsernameLength {
		return model.Profile{}, apierror.BadRequest("username must be at least 3 characters", "username")
	}

	if email == "" {
		email = user.Email
	} else if !emailPattern.MatchString(email) {
		return model.Profile{}, apierror.BadRequest("please provide a valid email address", "email")
	}

	updated, err := s.users.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		return model.Profile{}, err
	}
	return updated.Profile(), nil
}

// RequestPasswordReset issues a single-use reset token when the email is
// registered and does nothing otherwise. Both cases report the same generic
// success to the caller. The returned raw token is non-empty only in
// non-production mode.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apierror.BadRequest("please provide an email address", "email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	raw, hash, err := NewResetToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetPasswordReset(ctx, user.ID, hash, expiresAt); err != nil {
		return "", err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, raw); err != nil {
		return "", fmt.Errorf("send reset mail: %w", err)
	}

	if s.exposeResetToken {
		return raw, nil
	}
	return "", nil
}

// ResetPassword consumes a reset token exactly once. Wrong and expired
// tokens produce the same error. Session tokens issued before the change
// stay valid until their own expiry.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return apierror.BadRequest("token is invalid or has expired", "")
	}
	if len(newPassword) < minPasswordLength {
		return apierror.BadRequest("password must be at least 8 characters long", "new_password")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.users.ConsumePasswordReset(ctx, HashResetToken(rawToken), hash, s.now())
	if errors.Is(err, model.ErrInvalidResetToken) {
		return apierror.BadRequest("token is invalid or has expired", "")
	}
	return err
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) verifyToken(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || !parsed.Valid {
		return "", model.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", model.ErrUnauthorized
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", model.ErrUnauthorized
	}
	return userID, nil
}
