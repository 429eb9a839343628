// Package accounts manages user records: role assignment, password hashing
// and credential checks.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"perfumery/internal/apperr"
	applog "perfumery/internal/log"
	"perfumery/models"
)

// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Spec describes the desired state of one account.
type Spec struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Outcome tells whether Assign created or changed an account.
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks a user up case-insensitively.
func FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	user := &models.User{}
	err := db.WithContext(ctx).Where("lower(email) = ?", normalizeEmail(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when the password matches its stored hash.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	user, err := FindByEmail(ctx, db, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Assign creates the account or brings its name, role and password in line
// with spec. An empty password keeps the existing hash.
func Assign(ctx context.Context, db *gorm.DB, spec Spec) (*models.User, Outcome, error) {
	email := normalizeEmail(spec.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperr.Validation("email", "A valid email is required")
	}
	role, ok := models.ParseRole(spec.Role)
	if !ok {
		return nil, "", apperr.Validation("role", "Unknown role %q for %s", spec.Role, email)
	}

	user, err := FindByEmail(ctx, db, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if spec.Password == "" {
			return nil, "", apperr.Validation("password", "A password is required for new account %s", email)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(spec.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		user = &models.User{Email: email, Name: strings.TrimSpace(spec.Name), PasswordHash: string(hashed), Role: role}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, "", fmt.Errorf("create user %s: %w", email, err)
		}
		applog.Info(ctx, "account created", "email", email, "role", role)
		return user, Created, nil
	case err != nil:
		return nil, "", fmt.Errorf("load user %s: %w", email, err)
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(spec.Name); name != "" && name != user.Name {
		updates["name"] = name
		user.Name = name
	}
	if role != user.Role {
		updates["role"] = role
		user.Role = role
	}
	if spec.Password != "" && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(spec.Password)) != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(spec.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		updates["password_hash"] = string(hashed)
		user.PasswordHash = string(hashed)
	}
	if len(updates) == 0 {
		return user, Unchanged, nil
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, "", fmt.Errorf("update user %s: %w", email, err)
	}
	applog.Info(ctx, "account updated", "email", email, "role", user.Role)
	return user, Updated, nil
}

// Problem is an account that cannot use the application as configured.
type Problem struct {
	Email  string
	Reason string
}

// Verify reports accounts without a role or without a usable password hash.
func Verify(ctx context.Context, db *gorm.DB) ([]Problem, error) {
	var users []models.User
	if err := db.WithContext(ctx).Order("email asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var problems []Problem
	for _, user := range users {
		if user.Role == models.RoleNone {
			problems = append(problems, Problem{Email: user.Email, Reason: "no role assigned"})
		} else if _, ok := models.ParseRole(string(user.Role)); !ok {
			problems = append(problems, Problem{Email: user.Email, Reason: fmt.Sprintf("unknown role %q", user.Role)})
		}
		if _, err := bcrypt.Cost([]byte(user.PasswordHash)); err != nil {
			problems = append(problems, Problem{Email: user.Email, Reason: "password hash is not bcrypt"})
		}
	}
	return problems, nil
}
