package gyms

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrGymNotFound = errors.New("gym not found")

// Directory is the read-only view of the gym catalogue that the booking and
// payment cores consume. They never write through it.
type Directory interface {
	FindGym(ctx context.Context, id string) (Gym, error)
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindGym(ctx context.Context, id string) (Gym, error) {
	var g Gym
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Gym{}, ErrGymNotFound
		}
		return Gym{}, err
	}
	return g, nil
}

// Create and UpdateStatus back the registration/approval endpoints. The
// booking core itself never calls them.

func (r *Repo) Create(ctx context.Context, g *Gym) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *Repo) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&Gym{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGymNotFound
	}
	return nil
}

func (r *Repo) ListByStatus(ctx context.Context, status string) ([]Gym, error) {
	var out []Gym
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
