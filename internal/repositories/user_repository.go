package repositories

import "tupperstock/internal/models"

// UserRepository defines the interface for back-office user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
}
