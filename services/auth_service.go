package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/josvita0323/devhost-2025-sub000/models"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier проверяет bearer-токен внешней платформы идентификации и
// возвращает подтвержденные claims. Инъецируется в middleware, в тестах
// подменяется заглушкой.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

type AuthService interface {
	AdminLogin(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthService(adminEmail, adminPasswordHash, jwtSecret string) AuthService {
	return &authService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
	}
}

// AdminLogin сверяет учетные данные администратора с bcrypt-хешем из
// конфигурации и выписывает токен с ролью admin.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPasswordHash == "" {
		return "", ErrAuthInvalidCredentials
	}
	if email != s.adminEmail {
		return "", ErrAuthInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrAuthInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	claims := jwt.MapClaims{
		"uid":   "admin",
		"email": email,
		"name":  "Admin",
		"role":  string(models.RoleAdmin),
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// jwtVerifier — дефолтная реализация TokenVerifier для HS256-токенов.
type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		uid, _ = claims["sub"].(string)
	}
	if uid == "" {
		return nil, errors.New("missing uid claim in token")
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	role := models.RoleUser
	if roleStr, _ := claims["role"].(string); roleStr == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	return &models.Identity{
		UID:   uid,
		Email: email,
		Name:  name,
		Role:  role,
	}, nil
}
