package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type RoomRepository struct {
	DB *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{DB: db}
}

const roomColumns = `id, number, floor, area, status, price, deposit, capacity, vehicle_capacity,
       electric_price, water_price, service_price, COALESCE(description, ''),
       COALESCE(images, '{}'), COALESCE(amenity_ids, '{}'), lease_start, lease_end, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID, &room.Number, &room.Floor, &room.Area, &room.Status,
		&room.Price, &room.Deposit, &room.Capacity, &room.VehicleCapacity,
		&room.ElectricPrice, &room.WaterPrice, &room.ServicePrice, &room.Description,
		&room.Images, &room.AmenityIDs, &room.LeaseStart, &room.LeaseEnd,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO rooms (number, floor, area, status, price, deposit, capacity, vehicle_capacity,
                    electric_price, water_price, service_price, description, images, amenity_ids)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
         RETURNING id, created_at, updated_at`,
		room.Number, room.Floor, room.Area, room.Status, room.Price, room.Deposit,
		room.Capacity, room.VehicleCapacity, room.ElectricPrice, room.WaterPrice,
		room.ServicePrice, room.Description, room.Images, room.AmenityIDs,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

// Get returns nil with no error when the room does not exist.
func (r *RoomRepository) Get(ctx context.Context, id int) (*models.Room, error) {
	room, err := scanRoom(r.DB.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return room, err
}

func (r *RoomRepository) List(ctx context.Context, filter *models.RoomFilter) ([]*models.Room, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := 0

	if filter.Status != "" {
		arg++
		where = append(where, fmt.Sprintf("status=$%d", arg))
		args = append(args, filter.Status)
	}
	if filter.Floor != nil {
		arg++
		where = append(where, fmt.Sprintf("floor=$%d", arg))
		args = append(args, *filter.Floor)
	}
	if filter.MinPrice != nil {
		arg++
		where = append(where, fmt.Sprintf("price >= $%d", arg))
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		arg++
		where = append(where, fmt.Sprintf("price <= $%d", arg))
		args = append(args, *filter.MaxPrice)
	}
	if filter.Search != "" {
		arg++
		where = append(where, fmt.Sprintf("(number ILIKE $%d OR description ILIKE $%d)", arg, arg))
		args = append(args, "%"+filter.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM rooms WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + cond + ` ORDER BY floor, number`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}
	return rooms, total, rows.Err()
}

func (r *RoomRepository) Update(ctx context.Context, id int, patch *models.RoomPatch) (*models.Room, error) {
	set := []string{"updated_at=CURRENT_TIMESTAMP"}
	args := []interface{}{}
	arg := 0

	add := func(column string, value interface{}) {
		arg++
		set = append(set, fmt.Sprintf("%s=$%d", column, arg))
		args = append(args, value)
	}
	if patch.Number != nil {
		add("number", *patch.Number)
	}
	if patch.Floor != nil {
		add("floor", *patch.Floor)
	}
	if patch.Area != nil {
		add("area", *patch.Area)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Deposit != nil {
		add("deposit", *patch.Deposit)
	}
	if patch.Capacity != nil {
		add("capacity", *patch.Capacity)
	}
	if patch.VehicleCapacity != nil {
		add("vehicle_capacity", *patch.VehicleCapacity)
	}
	if patch.ElectricPrice != nil {
		add("electric_price", *patch.ElectricPrice)
	}
	if patch.WaterPrice != nil {
		add("water_price", *patch.WaterPrice)
	}
	if patch.ServicePrice != nil {
		add("service_price", *patch.ServicePrice)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.AmenityIDs != nil {
		add("amenity_ids", patch.AmenityIDs)
	}

	arg++
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE rooms SET %s WHERE id=$%d RETURNING `+roomColumns,
		strings.Join(set, ", "), arg)

	room, err := scanRoom(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return room, err
}

// UpdateStatus moves the room to the given status and replaces the lease
// window; nil clears it.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int, status string, leaseStart, leaseEnd *time.Time) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE rooms SET status=$1, lease_start=$2, lease_end=$3, updated_at=CURRENT_TIMESTAMP WHERE id=$4`,
		status, leaseStart, leaseEnd, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %d not found", id)
	}
	return nil
}

func (r *RoomRepository) AppendImages(ctx context.Context, id int, urls []string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE rooms SET images = COALESCE(images, '{}') || $1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		urls, id)
	return err
}

func (r *RoomRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %d not found", id)
	}
	return nil
}

// Statistics counts rooms per status for the dashboard.
func (r *RoomRepository) Statistics(ctx context.Context) (*models.RoomStatistics, error) {
	stats := &models.RoomStatistics{}
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
                COUNT(*) FILTER (WHERE status='available'),
                COUNT(*) FILTER (WHERE status='reserved'),
                COUNT(*) FILTER (WHERE status='rented'),
                COUNT(*) FILTER (WHERE status='expiring')
         FROM rooms`,
	).Scan(&stats.Total, &stats.Available, &stats.Reserved, &stats.Rented, &stats.Expiring)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
