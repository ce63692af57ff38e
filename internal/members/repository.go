package members

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the member directory used by reservation flows
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	Create(ctx context.Context, member *Member) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	var member Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) Create(ctx context.Context, member *Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}
