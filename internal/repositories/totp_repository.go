package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/timeutil"
)

// TOTPRepository persists 2FA verification attempts. The attempt log
// backs the per-user and per-IP rate limits.
type TOTPRepository struct {
	DB *pgxpool.Pool
}

func NewTOTPRepository(db *pgxpool.Pool) *TOTPRepository {
	return &TOTPRepository{DB: db}
}

func (r *TOTPRepository) RecordAttempt(ctx context.Context, userID int, ipAddress string, success bool) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO totp_verification_attempts (user_id, ip_address, success)
		VALUES ($1, $2, $3)`,
		userID, ipAddress, success)
	return err
}

// FailedAttemptsForUser counts a user's failed verifications inside the
// window.
func (r *TOTPRepository) FailedAttemptsForUser(ctx context.Context, userID int, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM totp_verification_attempts
		WHERE user_id = $1 AND success = false AND created_at > $2`,
		userID, timeutil.Now().Add(-window)).Scan(&count)
	return count, err
}

// FailedAttemptsFromIP counts failed verifications from one address
// inside the window, across all users.
func (r *TOTPRepository) FailedAttemptsFromIP(ctx context.Context, ipAddress string, window time.Duration) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM totp_verification_attempts
		WHERE ip_address = $1 AND success = false AND created_at > $2`,
		ipAddress, timeutil.Now().Add(-window)).Scan(&count)
	return count, err
}

// PruneAttempts drops attempt rows older than the retention cutoff.
func (r *TOTPRepository) PruneAttempts(ctx context.Context, olderThan time.Duration) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM totp_verification_attempts WHERE created_at < $1`,
		timeutil.Now().Add(-olderThan))
	return err
}
