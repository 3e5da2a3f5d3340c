// Package gormprovider implements the identity.Provider boundary on top of
// a GORM-backed user table. Federated sign-in accepts HS256 identity
// tokens issued by the external provider and verified with a shared secret.
package gormprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/identity"
	"finhelp/internal/models"
)

// MinPasswordLength is the weakest password accepted at registration.
const MinPasswordLength = 6

// Provider authenticates users against the database.
type Provider struct {
	db             *gorm.DB
	providerSecret []byte
}

// New creates a Provider. providerSecret verifies federated identity tokens.
func New(db *gorm.DB, providerSecret string) *Provider {
	return &Provider{db: db, providerSecret: []byte(providerSecret)}
}

// SignInWithCredentials authenticates an email/password pair.
func (p *Provider) SignInWithCredentials(ctx context.Context, email, password string) (*identity.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Federated accounts have no local password and cannot log in with one.
	if user.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return accountFor(&user), nil
}

// providerClaims is the payload of a federated identity token.
type providerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// SignInWithProvider verifies a federated identity token and signs in the
// matching user, registering one on first sign-in.
func (p *Provider) SignInWithProvider(ctx context.Context, idToken string) (*identity.Account, error) {
	claims := &providerClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.providerSecret, nil
	})
	if err != nil || !token.Valid {
		msg := "provider token rejected"
		if err != nil {
			msg = err.Error()
		}
		return nil, apperrors.WithMessage(apperrors.ErrProviderSignInFailed, msg)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrProviderSignInFailed, "provider token has no email")
	}

	var user models.User
	err = p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Email: email, DisplayName: claims.Name}
		if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrProviderSignInFailed, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return accountFor(&user), nil
}

// SignUp registers a new user with email and password.
func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*identity.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRegistrationFailed, err)
	}
	if count > 0 {
		return nil, apperrors.ErrEmailAlreadyInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRegistrationFailed, err)
	}

	user := models.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: strings.TrimSpace(name),
	}
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRegistrationFailed, err)
	}

	return accountFor(&user), nil
}

func accountFor(user *models.User) *identity.Account {
	return &identity.Account{
		OwnerID:     user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}
}
