package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"facility_dashboard_backend/pkg/utils"
)

// RoleAdmin is the only role. Whoever knows the passphrase is an admin.
const RoleAdmin = "admin"

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

type authService struct {
	passphraseHash []byte
	jwtManager     *utils.JWTManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(passphraseHash []byte, jwtManager *utils.JWTManager) AuthService {
	return &authService{passphraseHash: passphraseHash, jwtManager: jwtManager}
}

// Login checks the shared admin passphrase and issues an access token.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(req.Passphrase)); err != nil {
		utils.LogWarn("Rejected admin login")
		return nil, ErrInvalidPassphrase
	}
	token, expiresAt, err := s.jwtManager.GenerateAccessToken(RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt, Role: RoleAdmin}, nil
}
