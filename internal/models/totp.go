package models

import "time"

// TOTPSetupResponse carries the enrollment material for a new 2FA
// secret. QRCode is a data URI holding a PNG the frontend renders
// directly.
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// TOTPEnableRequest confirms enrollment with a first valid code.
type TOTPEnableRequest struct {
	Code string `json:"code"`
}

// TOTPVerifyRequest is the second login step. Code accepts either a
// 6-digit TOTP code or an unused backup code.
type TOTPVerifyRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

// TOTPDisableRequest turns 2FA off; both the password and a current
// code are required.
type TOTPDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// RegenerateBackupCodesRequest invalidates all existing backup codes.
type RegenerateBackupCodesRequest struct {
	Password string `json:"password"`
}

// BackupCodesResponse holds plaintext backup codes. They are shown
// exactly once; only bcrypt hashes are stored.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// User2FAStatus describes a user's 2FA state for the settings page.
type User2FAStatus struct {
	Enabled        bool       `json:"enabled"`
	EnabledAt      *time.Time `json:"enabled_at,omitempty"`
	HasBackupCodes bool       `json:"has_backup_codes"`
}
