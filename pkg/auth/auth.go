package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidToken is returned for tokens that fail verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidKey is returned for API keys that are malformed or wrongly signed
	ErrInvalidKey = errors.New("invalid api key")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies operator tokens and API keys
type Authenticator struct {
	jwtSecret    []byte
	masterSecret []byte
	tokenTTL     time.Duration
	bcryptCost   int
}

// New creates an Authenticator from the application config
func New(cfg *config.AppConfig) *Authenticator {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		jwtSecret:    []byte(cfg.JWTSecret),
		masterSecret: []byte(cfg.MasterSecret),
		tokenTTL:     ttl,
		bcryptCost:   cost,
	}
}

// HashPassword hashes a password using bcrypt
func (a *Authenticator) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for an operator
func (a *Authenticator) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken verifies a JWT token
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (a *Authenticator) GenerateHMACKey(clientID string) string {
	return clientID + "." + a.sign(clientID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its client id
func (a *Authenticator) VerifyHMACKey(key string) (string, error) {
	clientID, signature, ok := strings.Cut(key, ".")
	if !ok || clientID == "" || strings.Contains(signature, ".") {
		return "", fmt.Errorf("%w: bad format", ErrInvalidKey)
	}

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(signature), []byte(a.sign(clientID))) {
		return "", fmt.Errorf("%w: bad signature", ErrInvalidKey)
	}

	return clientID, nil
}

func (a *Authenticator) sign(clientID string) string {
	h := hmac.New(sha256.New, a.masterSecret)
	h.Write([]byte(clientID))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyPreview masks a key for listings, e.g. "war...9f3c"
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// EnsureAdminExists creates the first operator when the table is empty
func (a *Authenticator) EnsureAdminExists(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&database.Operator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := a.HashPassword(password)
	if err != nil {
		return err
	}

	op := database.Operator{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&op).Error; err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("Default operator created")
	return nil
}
