package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/config"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "student-campaigns-backend"

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrUserNotFound         = errors.New("user not found")
	ErrSelfServiceRole      = errors.New("only student or donor accounts can be self-registered")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidVerification  = errors.New("invalid verification status")
	ErrTokenVersionMismatch = errors.New("token version mismatch")
)

// UserStore is the user persistence the auth service needs
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	UpdateLastLogin(userID string, now time.Time) error
	IncrementTokenVersion(userID string) error
	CheckUsernameExists(username string) (bool, error)
	UpdateVerificationStatus(userID string, status models.VerificationStatus) error
	UpdateRole(userID string, role models.UserRole) error
	GetAllUsers(page utils.PageRequest, search string, role models.UserRole) ([]models.User, int64, error)
}

// RefreshTokenStore is the refresh token persistence the auth service needs
type RefreshTokenStore interface {
	Create(refreshToken *models.RefreshToken) error
	GetByToken(token string) (*models.RefreshToken, error)
	RevokeToken(token string) error
	RevokeAllUserTokens(userID string) error
}

type AuthService struct {
	userRepo         UserStore
	refreshTokenRepo RefreshTokenStore
	jwtSecret        []byte
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	now              func() time.Time
}

func NewAuthService(userRepo UserStore, refreshTokenRepo RefreshTokenStore, cfg config.AuthConfig) *AuthService {
	logrus.Infof("Access token TTL: %s", cfg.AccessTokenTTL)
	logrus.Infof("Refresh token TTL: %s", cfg.RefreshTokenTTL)

	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        []byte(cfg.JWTSecret),
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		now:              time.Now,
	}
}

// Register registers a new student or donor account. Verification starts
// unverified and is granted by an admin.
func (s *AuthService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleDonor {
		return nil, ErrSelfServiceRole
	}

	exists, err := s.userRepo.CheckUsernameExists(req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:           req.Username,
		PasswordHash:       string(hashedPassword),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Role:               role,
		VerificationStatus: models.VerificationUnverified,
		IsActive:           true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.Infof("Registered %s account %s", user.Role, user.ID)
	return s.generateAuthResponse(user)
}

// Login authenticates a user
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		// Not fatal for login
		logrus.Warnf("Failed to update last login for user %s: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}

	return s.generateAuthResponse(user)
}

// RefreshToken rotates a refresh token into a new token pair
func (s *AuthService) RefreshToken(refreshTokenStr string) (*models.AuthResponse, error) {
	refreshToken, err := s.refreshTokenRepo.GetByToken(refreshTokenStr)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if refreshToken.ExpiresAt.Before(s.now()) {
		if err := s.refreshTokenRepo.RevokeToken(refreshTokenStr); err != nil {
			logrus.Warnf("Failed to revoke expired refresh token: %v", err)
		}
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.userRepo.GetByID(refreshToken.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if err := s.refreshTokenRepo.RevokeToken(refreshTokenStr); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.generateAuthResponse(user)
}

// Logout revokes one refresh token, or every session of the user when none is given
func (s *AuthService) Logout(refreshTokenStr string, userID string) error {
	if refreshTokenStr != "" {
		return s.refreshTokenRepo.RevokeToken(refreshTokenStr)
	}
	if err := s.userRepo.IncrementTokenVersion(userID); err != nil {
		return fmt.Errorf("failed to increment token version: %w", err)
	}
	if err := s.refreshTokenRepo.RevokeAllUserTokens(userID); err != nil {
		return fmt.Errorf("failed to revoke all refresh tokens: %w", err)
	}
	return nil
}

// ValidateToken validates a JWT access token and returns its user
func (s *AuthService) ValidateToken(tokenString string) (*models.TokenInfo, *models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, nil, errors.New("invalid token claims")
	}

	// Role and verification are read from the user row, not the claims, so
	// admin changes take effect immediately.
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}
	if claims.TokenVersion != user.TokenVersion {
		return nil, nil, ErrTokenVersionMismatch
	}

	return &models.TokenInfo{
		UserID:       claims.UserID,
		Username:     claims.Username,
		TokenVersion: claims.TokenVersion,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, user, nil
}

// GetProfile returns a user by ID
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
		User:         user.ToResponse(),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := &models.JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	refreshToken := &models.RefreshToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return token, nil
}

// EnsureAdminUser creates the seed admin account if the username is free
func (s *AuthService) EnsureAdminUser(username, password string) error {
	if username == "" || password == "" {
		logrus.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	existingUser, err := s.userRepo.GetByUsername(username)
	if err == nil && existingUser != nil {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := &models.User{
		Username:           username,
		PasswordHash:       string(hashedPassword),
		FirstName:          "Admin",
		LastName:           "User",
		Role:               models.RoleAdmin,
		VerificationStatus: models.VerificationApproved,
		IsActive:           true,
	}
	if err := s.userRepo.Create(adminUser); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.Infof("Created admin user %s", username)
	return nil
}

// SetVerificationStatus records the outcome of an identity verification
func (s *AuthService) SetVerificationStatus(userID string, status models.VerificationStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidVerification
	}
	if _, err := s.GetProfile(userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateVerificationStatus(userID, status); err != nil {
		return nil, fmt.Errorf("failed to update verification status: %w", err)
	}
	return s.GetProfile(userID)
}

// SetUserRole changes the role of a user. Existing sessions are invalidated.
func (s *AuthService) SetUserRole(userID string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.GetProfile(userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.GetProfile(userID)
}

// SetUserActive sets the active status of a user
func (s *AuthService) SetUserActive(userID string, isActive bool) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	user.IsActive = isActive
	return s.userRepo.Update(user)
}

// GetAllUsers returns users with pagination, search and an optional role filter
func (s *AuthService) GetAllUsers(page utils.PageRequest, search string, role models.UserRole) ([]models.User, int64, error) {
	users, total, err := s.userRepo.GetAllUsers(page.Normalized(), search, role)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	return users, total, nil
}
