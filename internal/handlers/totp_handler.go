package handlers

import (
	"encoding/json"
	"net/http"

	"rental-backend/internal/auth"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type TOTPHandler struct {
	TOTPService *services.TOTPService
	UserRepo    *repositories.UserRepository
	JWTManager  *auth.JWTManager
}

func NewTOTPHandler(totpService *services.TOTPService, userRepo *repositories.UserRepository, jwtManager *auth.JWTManager) *TOTPHandler {
	return &TOTPHandler{
		TOTPService: totpService,
		UserRepo:    userRepo,
		JWTManager:  jwtManager,
	}
}

// SetupTOTP initiates 2FA setup - returns secret and QR code
func (h *TOTPHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.UserRepo.Get(r.Context(), userID)
	if err != nil {
		utils.ErrorMessage(w, http.StatusNotFound, "User not found")
		return
	}

	// Check if already enabled
	if user.TOTPEnabled {
		utils.ErrorMessage(w, http.StatusBadRequest, "2FA is already enabled")
		return
	}

	response, err := h.TOTPService.GenerateSetup(r.Context(), user)
	if err != nil {
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to generate 2FA setup")
		return
	}

	utils.JSON(w, http.StatusOK, response)
}

// EnableTOTP verifies the code and enables 2FA - returns backup codes
func (h *TOTPHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.TOTPEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Code == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	response, err := h.TOTPService.VerifyAndEnable(r.Context(), userID, req.Code, getIPAddress(r))
	if err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to enable 2FA")
		return
	}

	utils.JSON(w, http.StatusOK, response)
}

// DisableTOTP turns off 2FA after verifying password and code
func (h *TOTPHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.TOTPDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Password == "" || req.Code == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Password and verification code are required")
		return
	}

	if err := h.TOTPService.Disable(r.Context(), userID, req.Password, req.Code); err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to disable 2FA")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled successfully"})
}

// GetStatus returns the 2FA status for the current user
func (h *TOTPHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := h.TOTPService.GetStatus(r.Context(), userID)
	if err != nil {
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to get 2FA status")
		return
	}

	utils.JSON(w, http.StatusOK, status)
}

// RegenerateBackupCodes creates new backup codes (requires password)
func (h *TOTPHandler) RegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.RegenerateBackupCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Password == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Password is required")
		return
	}

	response, err := h.TOTPService.RegenerateBackupCodes(r.Context(), userID, req.Password)
	if err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to regenerate backup codes")
		return
	}

	utils.JSON(w, http.StatusOK, response)
}

// VerifyTOTP handles 2FA verification during login (step 2)
func (h *TOTPHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TempToken == "" || req.Code == "" {
		utils.ErrorMessage(w, http.StatusBadRequest, "Temp token and verification code are required")
		return
	}

	// Validate temp token
	tempClaims, err := h.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	user, err := h.UserRepo.Get(r.Context(), tempClaims.UserID)
	if err != nil {
		utils.ErrorMessage(w, http.StatusNotFound, "User not found")
		return
	}

	valid, err := h.TOTPService.Verify(r.Context(), user.ID, req.Code, getIPAddress(r))
	if err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			utils.ErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorMessage(w, http.StatusInternalServerError, "Verification failed")
		return
	}

	if !valid {
		utils.ErrorMessage(w, http.StatusUnauthorized, "Invalid verification code")
		return
	}

	// Verification done, issue the full session token
	token, err := h.JWTManager.GenerateToken(user)
	if err != nil {
		utils.ErrorMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.JSON(w, http.StatusOK, &models.AuthResponse{
		Token: token,
		User:  user,
	})
}
