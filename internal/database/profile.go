package database

import (
	"context"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type Profile struct {
	UserID    string    `gorm:"column:user_id;primaryKey;type:varchar(255)"`
	Role      string    `gorm:"column:role;type:varchar(20);default:'office'"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (s *service) GetProfile(ctx context.Context, userID string) (usecase.Profile, error) {
	var p Profile

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return usecase.Profile{}, translate(err)
	}
	return p.ConvertToUsecase(), nil
}

func (p Profile) ConvertToUsecase() usecase.Profile {
	return usecase.Profile{
		UserID:    p.UserID,
		Role:      usecase.ParseRole(p.Role),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
