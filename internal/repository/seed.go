package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/eaglebank/auth-api/shared/models"
	"github.com/eaglebank/auth-api/shared/utils"
)

// SeedUser is a demo account created at startup with a plain password.
type SeedUser struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Role     string
}

// DefaultSeedUsers are the accounts available on a fresh start.
var DefaultSeedUsers = []SeedUser{
	{ID: 1, Name: "user1", Email: "X4E5w@example.com", Password: "1234"},
	{ID: 2, Name: "user2", Email: "test@example.com", Password: "Xdfio23"},
}

// PromoteAdmins returns a copy of users where every account whose email is
// listed in adminEmails (case-insensitive) has the admin role.
func PromoteAdmins(users []SeedUser, adminEmails []string) []SeedUser {
	out := slices.Clone(users)
	for i := range out {
		if slices.ContainsFunc(adminEmails, func(e string) bool {
			return strings.EqualFold(e, out[i].Email)
		}) {
			out[i].Role = models.RoleAdmin
		}
	}
	return out
}

// Seed hashes each password and inserts the users.
func Seed(ctx context.Context, store UserCreator, users []SeedUser) error {
	for _, su := range users {
		hash, err := utils.HashPassword(su.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.Email, err)
		}
		err = store.Create(ctx, &models.User{
			ID:           su.ID,
			Name:         su.Name,
			Email:        su.Email,
			Role:         su.Role,
			PasswordHash: hash,
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %d: %w", su.ID, err)
		}
	}
	return nil
}
