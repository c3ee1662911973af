package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type AmenityRepository struct {
	DB *pgxpool.Pool
}

func NewAmenityRepository(db *pgxpool.Pool) *AmenityRepository {
	return &AmenityRepository{DB: db}
}

func (r *AmenityRepository) Create(ctx context.Context, a *models.Amenity) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO amenities (name, icon) VALUES ($1, $2)
         RETURNING id, created_at, updated_at`,
		a.Name, a.Icon,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Get returns nil with no error when the amenity does not exist.
func (r *AmenityRepository) Get(ctx context.Context, id int) (*models.Amenity, error) {
	a := &models.Amenity{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(icon, ''), created_at, updated_at FROM amenities WHERE id=$1`, id,
	).Scan(&a.ID, &a.Name, &a.Icon, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AmenityRepository) List(ctx context.Context) ([]*models.Amenity, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(icon, ''), created_at, updated_at FROM amenities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var amenities []*models.Amenity
	for rows.Next() {
		a := &models.Amenity{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		amenities = append(amenities, a)
	}
	return amenities, rows.Err()
}

func (r *AmenityRepository) Update(ctx context.Context, a *models.Amenity) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE amenities SET name=$1, icon=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		a.Name, a.Icon, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("amenity %d not found", a.ID)
	}
	return nil
}

func (r *AmenityRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM amenities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("amenity %d not found", id)
	}
	return nil
}
