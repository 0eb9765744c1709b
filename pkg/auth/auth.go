package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/database"
	apperrors "github.com/arnavshah/exam-staffing-api/pkg/errors"
)

const defaultBcryptCost = 14

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues admin tokens and verifies API keys
type Service struct {
	db           *gorm.DB
	jwtSecret    []byte
	expiration   time.Duration
	masterSecret string
	admin        config.AdminConfig
	bcryptCost   int
	logger       *zap.Logger
}

// Option customises a Service
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	expiration := cfg.JWT.Expiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	s := &Service{
		db:           db,
		jwtSecret:    []byte(cfg.JWT.Secret),
		expiration:   expiration,
		masterSecret: cfg.APIMasterSecret,
		admin:        cfg.Admin,
		bcryptCost:   defaultBcryptCost,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (s *Service) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Login checks the credentials of a master user and returns a token
func (s *Service) Login(username, password string) (string, error) {
	var user database.MasterUser
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return "", apperrors.ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", apperrors.ErrInvalidCredentials
	}
	token, err := s.CreateToken(user.Username)
	if err != nil {
		return "", apperrors.ErrInternal.Wrap(err, "could not create token")
	}
	return token, nil
}

// EnsureAdminExists creates the configured admin when no master user exists
func (s *Service) EnsureAdminExists() error {
	var count int64
	if err := s.db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := s.HashPassword(s.admin.Password)
	if err != nil {
		return err
	}
	user := database.MasterUser{
		Username:     s.admin.Username,
		PasswordHash: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return err
	}
	s.logger.Info("default admin user created", zap.String("username", user.Username))
	return nil
}

// GenerateKey signs userID with the master secret
func (s *Service) GenerateKey(userID string) string {
	return GenerateHMACKey(s.masterSecret, userID)
}

// VerifyKey checks the signature of an API key and returns its user ID
func (s *Service) VerifyKey(key string) (string, error) {
	return VerifyHMACKey(s.masterSecret, key)
}

// VerifyAPIKey checks the key signature, then fetches or creates the key
// record used for usage tracking
func (s *Service) VerifyAPIKey(key string) (*database.APIKey, error) {
	userID, err := s.VerifyKey(key)
	if err != nil {
		return nil, err
	}

	var apiKey database.APIKey
	err = s.db.Where(database.APIKey{Key: key}).Attrs(database.APIKey{
		Name:       userID,
		KeyPreview: KeyPreview(key),
		RateLimit:  10000,
	}).FirstOrCreate(&apiKey).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	apiKey.LastUsed = &now
	s.db.Model(&apiKey).Update("last_used", now)

	return &apiKey, nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func GenerateHMACKey(secret, userID string) string {
	return userID + "." + sign(secret, userID)
}

// VerifyHMACKey validates an HMAC-signed API key
func VerifyHMACKey(secret, key string) (string, error) {
	idx := strings.LastIndex(key, ".")
	if idx <= 0 || idx == len(key)-1 {
		return "", ErrInvalidKeyFormat
	}

	userID := key[:idx]
	if !hmac.Equal([]byte(key[idx+1:]), []byte(sign(secret, userID))) {
		return "", ErrInvalidSignature
	}

	return userID, nil
}

func sign(secret, userID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyPreview masks all but the first three and last four characters
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}
