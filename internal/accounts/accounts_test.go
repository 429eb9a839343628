package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfumery/internal/apperr"
	"perfumery/internal/db/dbtest"
	"perfumery/models"
)

func TestAssignCreatesThenUpdates(t *testing.T) {
	database := dbtest.New(t)
	ctx := context.Background()

	user, outcome, err := Assign(ctx, database, Spec{Email: " Avery@Example.com ", Name: "Avery", Password: "secret", Role: "R&D"})
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, "avery@example.com", user.Email)
	assert.Equal(t, models.RoleRnD, user.Role)

	_, outcome, err = Assign(ctx, database, Spec{Email: "avery@example.com", Role: "rd"})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)

	user, outcome, err = Assign(ctx, database, Spec{Email: "avery@example.com", Role: "qa", Password: "changed"})
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	assert.Equal(t, models.RoleQA, user.Role)

	_, err = Authenticate(ctx, database, "AVERY@example.com", "changed")
	require.NoError(t, err)
	_, err = Authenticate(ctx, database, "avery@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAssignValidation(t *testing.T) {
	database := dbtest.New(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		spec  Spec
		field string
	}{
		{"missing email", Spec{Password: "x", Role: "qa"}, "email"},
		{"unknown role", Spec{Email: "a@b.c", Password: "x", Role: "admin"}, "role"},
		{"new account without password", Spec{Email: "a@b.c", Role: "qa"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Assign(ctx, database, tt.spec)
			var validation *apperr.ValidationError
			require.True(t, errors.As(err, &validation), "got %v", err)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	database := dbtest.New(t)
	_, err := Authenticate(context.Background(), database, "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyReportsProblems(t *testing.T) {
	database := dbtest.New(t)
	ctx := context.Background()

	_, _, err := Assign(ctx, database, Spec{Email: "ok@example.com", Password: "pw", Role: "manager"})
	require.NoError(t, err)
	require.NoError(t, database.Create(&models.User{Email: "norole@example.com", PasswordHash: "plain"}).Error)

	problems, err := Verify(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, []Problem{
		{Email: "norole@example.com", Reason: "no role assigned"},
		{Email: "norole@example.com", Reason: "password hash is not bcrypt"},
	}, problems)
}
