package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

const (
	backupCodeCount  = 10
	backupCodeLength = 8
	qrImageSize      = 200

	// Verification is throttled per user and, more loosely, per source
	// address so a shared office IP does not lock everyone out at once.
	maxFailedAttempts = 5
	rateLimitWindow   = 15 * time.Minute
)

// TOTPError carries a user-facing 2FA failure message.
type TOTPError struct {
	Message string
}

func (e *TOTPError) Error() string { return e.Message }

var (
	ErrTooManyAttempts = &TOTPError{Message: "too many failed attempts, please try again later"}
	ErrNoTOTPSecret    = &TOTPError{Message: "2FA setup not initiated"}
	ErrInvalidTOTPCode = &TOTPError{Message: "invalid verification code"}
	ErrTOTPNotEnabled  = &TOTPError{Message: "2FA is not enabled"}
	ErrInvalidPassword = &TOTPError{Message: "invalid password"}
)

// TOTPService runs the two-factor enrollment and verification flow.
// Secrets live on the user record; attempt history lives in its own
// table for rate limiting.
type TOTPService struct {
	issuer   string
	userRepo *repositories.UserRepository
	totpRepo *repositories.TOTPRepository
}

func NewTOTPService(issuer string, userRepo *repositories.UserRepository, totpRepo *repositories.TOTPRepository) *TOTPService {
	return &TOTPService{issuer: issuer, userRepo: userRepo, totpRepo: totpRepo}
}

// GenerateSetup mints a fresh secret for the user and returns it with a
// QR code data URI. The secret is stored immediately but 2FA stays off
// until a first code is verified through VerifyAndEnable.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qr, err := renderQRDataURI(key)
	if err != nil {
		return nil, err
	}
	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      qr,
		Issuer:      s.issuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable turns 2FA on after the user proves they hold the
// secret, and hands back a one-time view of fresh backup codes.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string, ipAddress string) (*models.BackupCodesResponse, error) {
	if err := s.checkRateLimit(ctx, userID, ipAddress); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPSecret == "" {
		return nil, ErrNoTOTPSecret
	}
	if !totp.Validate(code, user.TOTPSecret) {
		s.totpRepo.RecordAttempt(ctx, userID, ipAddress, false)
		return nil, ErrInvalidTOTPCode
	}
	s.totpRepo.RecordAttempt(ctx, userID, ipAddress, true)

	if err := s.userRepo.EnableTOTP(ctx, userID); err != nil {
		return nil, err
	}
	codes, err := s.issueBackupCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.BackupCodesResponse{Codes: codes}, nil
}

// Verify checks the second login factor. A 6-digit code is tried first,
// then the backup codes; a matching backup code is consumed.
func (s *TOTPService) Verify(ctx context.Context, userID int, code string, ipAddress string) (bool, error) {
	if err := s.checkRateLimit(ctx, userID, ipAddress); err != nil {
		return false, err
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.TOTPEnabled || user.TOTPSecret == "" {
		return false, ErrTOTPNotEnabled
	}

	ok := totp.Validate(code, user.TOTPSecret) ||
		s.consumeBackupCode(ctx, userID, code, user.BackupCodes)
	s.totpRepo.RecordAttempt(ctx, userID, ipAddress, ok)
	if !ok {
		return false, ErrInvalidTOTPCode
	}
	return true, nil
}

// Disable requires both the password and a live code, so a stolen
// session alone cannot switch 2FA off.
func (s *TOTPService) Disable(ctx context.Context, userID int, password, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.userRepo.DisableTOTP(ctx, userID)
}

// RegenerateBackupCodes replaces the whole backup code set.
func (s *TOTPService) RegenerateBackupCodes(ctx context.Context, userID int, password string) (*models.BackupCodesResponse, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidPassword
	}
	if !user.TOTPEnabled {
		return nil, ErrTOTPNotEnabled
	}

	codes, err := s.issueBackupCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.BackupCodesResponse{Codes: codes}, nil
}

func (s *TOTPService) GetStatus(ctx context.Context, userID int) (*models.User2FAStatus, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User2FAStatus{
		Enabled:        user.TOTPEnabled,
		EnabledAt:      user.TOTPVerifiedAt,
		HasBackupCodes: user.BackupCodes != "" && user.BackupCodes != "[]",
	}, nil
}

// issueBackupCodes stores bcrypt hashes and returns the plaintext codes
// for their single display.
func (s *TOTPService) issueBackupCodes(ctx context.Context, userID int) ([]string, error) {
	plain := make([]string, backupCodeCount)
	hashed := make([]string, backupCodeCount)
	for i := range plain {
		code, err := randomBackupCode()
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		plain[i], hashed[i] = code, string(hash)
	}

	stored, err := json.Marshal(hashed)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetBackupCodes(ctx, userID, string(stored)); err != nil {
		return nil, err
	}
	return plain, nil
}

// consumeBackupCode removes the matched code from the stored set so it
// can never be replayed.
func (s *TOTPService) consumeBackupCode(ctx context.Context, userID int, code, storedCodes string) bool {
	if storedCodes == "" {
		return false
	}
	var hashed []string
	if err := json.Unmarshal([]byte(storedCodes), &hashed); err != nil {
		return false
	}
	for i, hash := range hashed {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
			continue
		}
		remaining, _ := json.Marshal(append(hashed[:i], hashed[i+1:]...))
		s.userRepo.SetBackupCodes(ctx, userID, string(remaining))
		return true
	}
	return false
}

func (s *TOTPService) checkRateLimit(ctx context.Context, userID int, ipAddress string) error {
	userFails, err := s.totpRepo.FailedAttemptsForUser(ctx, userID, rateLimitWindow)
	if err != nil {
		return err
	}
	ipFails, err := s.totpRepo.FailedAttemptsFromIP(ctx, ipAddress, rateLimitWindow)
	if err != nil {
		return err
	}
	if userFails >= maxFailedAttempts || ipFails >= maxFailedAttempts*2 {
		return ErrTooManyAttempts
	}
	return nil
}

func renderQRDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// randomBackupCode draws from an alphabet without easily confused
// characters (no I, O, 0, 1).
func randomBackupCode() (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	raw := make([]byte, backupCodeLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	code := make([]byte, backupCodeLength)
	for i, b := range raw {
		code[i] = charset[int(b)%len(charset)]
	}
	return string(code), nil
}
