package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/internal/dto"
	"github.com/myfirstshop/fragrance-api/internal/repository"
	"github.com/myfirstshop/fragrance-api/pkg/telemetry"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token expired")
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new admin account and returns a signed token
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login authenticates an account and returns a signed token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// VerifyToken validates a token and returns its claims
	VerifyToken(ctx context.Context, token string) (*domain.Claims, error)
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	config   *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, config *AuthServiceConfig) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo: userRepo,
		config:   config,
	}
}

// Register creates a new admin account and returns a signed token.
// Every account registered through this endpoint is an admin; the
// storefront has no customer accounts.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	email := normalizeEmail(req.Email)

	// Check if the email is already taken
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to check email")
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "Email already registered")
		return nil, ErrEmailAlreadyRegistered
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to hash password")
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent registrations can pass the exists check; the
		// unique index catches the loser.
		if mongo.IsDuplicateKeyError(err) {
			span.SetStatus(codes.Error, "Email already registered")
			return nil, ErrEmailAlreadyRegistered
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create user")
		return nil, err
	}

	token, err := s.signToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to sign token")
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

// Login authenticates an account. Unknown emails and wrong passwords
// fail with the same error so the response does not leak which emails
// are registered.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get user")
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to sign token")
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

// VerifyToken validates a token and returns its claims
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.verify_token")
	defer span.End()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		span.SetStatus(codes.Error, "Invalid token")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		span.SetStatus(codes.Error, "Invalid token")
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		span.SetStatus(codes.Error, "Invalid token")
		return nil, ErrInvalidToken
	}

	userID, ok := claims["id"].(string)
	if !ok {
		span.SetStatus(codes.Error, "Invalid token")
		return nil, ErrInvalidToken
	}
	isAdmin, _ := claims["isAdmin"].(bool)

	verified := &domain.Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
	}
	if iat, ok := claims["iat"].(float64); ok {
		verified.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		verified.ExpiresAt = time.Unix(int64(exp), 0)
	}

	span.SetAttributes(attribute.String("user_id", userID))
	span.SetStatus(codes.Ok, "")
	return verified, nil
}

// signToken issues an HS256 token carrying the account identity
func (s *authService) signToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":      user.ID,
		"isAdmin": user.IsAdmin,
		"iat":     now.Unix(),
		"exp":     now.Add(s.config.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(s.config.JWTSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toUserResponse converts User to UserResponse
func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}
