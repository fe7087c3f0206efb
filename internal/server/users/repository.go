package users

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// Update writes the whole record by id. There is no partial-field API
	// and no version check, so concurrent updates to the same user are
	// last-writer-wins.
	Update(ctx context.Context, user *User) error
}
