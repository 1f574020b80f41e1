package repository

import (
	"context"

	"assetcat/internal/model"
)

// UserRepository reads acting users. User management itself is outside this service.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}
