package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bakery/internal/models"
	"bakery/internal/services"
)

// UserCreator is the part of the auth service used for seeding.
type UserCreator interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
}

// ProductStore is the part of the product repository used for seeding.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	Count(ctx context.Context) (int64, error)
}

type SeedOptions struct {
	AdminPassword string
	ChefPassword  string
}

var defaultProducts = []models.Product{
	{Name: "Торт Наполеон", BasePrice: 1800, IsAvailable: true},
	{Name: "Торт Медовик", BasePrice: 1600, IsAvailable: true},
	{Name: "Эклер", BasePrice: 150, IsAvailable: true},
	{Name: "Капкейк", BasePrice: 220, IsAvailable: true},
}

// CreateDefaultData creates the staff accounts and the starter catalog when
// they are missing. Existing rows are never modified.
func CreateDefaultData(ctx context.Context, users UserCreator, products ProductStore, opts SeedOptions, logger *slog.Logger) error {
	logger = logger.With("component", "seed")

	staff := []struct {
		user     models.User
		password string
	}{
		{models.User{Username: "admin", Email: "admin@bakery.local", Role: models.RoleAdmin}, opts.AdminPassword},
		{models.User{Username: "chef", Email: "chef@bakery.local", Role: models.RoleChef}, opts.ChefPassword},
	}

	for _, s := range staff {
		user := s.user
		err := users.CreateUser(ctx, &user, s.password)
		switch {
		case err == nil:
			logger.Info("default user created", "username", user.Username, "role", user.Role)
		case errors.Is(err, services.ErrUserExists):
			logger.Debug("default user already exists", "username", user.Username)
		default:
			return fmt.Errorf("failed to create user %s: %w", user.Username, err)
		}
	}

	count, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range defaultProducts {
		product := p
		if err := products.Create(ctx, &product); err != nil {
			return fmt.Errorf("failed to create product %s: %w", product.Name, err)
		}
	}
	logger.Info("default catalog created", "products", len(defaultProducts))
	return nil
}
