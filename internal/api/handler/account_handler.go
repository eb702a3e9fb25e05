package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scoresync/account-service/internal/core/ports"
)

// AccountHandler exposes the account lifecycle over HTTP. Service errors are
// returned as-is and rendered by the API error handler.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// --- Request / Response types ---

type registerRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	SyncEnabled *bool  `json:"sync_enabled" validate:"required"`
}

type loginRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	SyncEnabled *bool  `json:"sync_enabled,omitempty"`
}

type resetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type syncEnabledRequest struct {
	SyncEnabled *bool `json:"sync_enabled" validate:"required"`
}

type editUserInfoRequest struct {
	NewUsername string `json:"new_username,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type editUserInfoResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		SyncEnabled: *req.SyncEnabled,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "user registered successfully", UserID: res.ID})
}

// Login verifies credentials and returns a bearer token. When sync_enabled is
// present it overwrites the stored preference.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.accounts.Login(c.Request().Context(), ports.LoginInput{
		Username:    req.Username,
		Password:    req.Password,
		SyncEnabled: req.SyncEnabled,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: res.Token})
}

// ResetPassword overwrites the password of an account without asking for the
// old one.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Username and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /reset_password [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ResetPassword(c.Request().Context(), req.Username, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password reset successfully"})
}

// Logout records the logout time. The token itself stays valid until expiry.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer token"
// @Success      200            {object}  messageResponse
// @Failure      401            {object}  map[string]string
// @Failure      500            {object}  map[string]string
// @Router       /logout [get]
func (h *AccountHandler) Logout(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

// SyncEnabled sets the sync preference of the authenticated account.
//
// @Summary      Toggle sync
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        Authorization  header    string              true  "Bearer token"
// @Param        body           body      syncEnabledRequest  true  "Sync preference"
// @Success      200            {object}  messageResponse
// @Failure      400            {object}  map[string]string
// @Failure      401            {object}  map[string]string
// @Failure      404            {object}  map[string]string
// @Failure      500            {object}  map[string]string
// @Router       /sync_enabled [post]
func (h *AccountHandler) SyncEnabled(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	var req syncEnabledRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ToggleSync(c.Request().Context(), token, *req.SyncEnabled); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "sync preference updated"})
}

// EditUserInfo renames the authenticated account and/or changes its password.
// Empty fields are ignored. A rename returns a fresh token for the new name.
//
// @Summary      Edit account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        Authorization  header    string               true  "Bearer token"
// @Param        body           body      editUserInfoRequest  true  "Changes"
// @Success      200            {object}  editUserInfoResponse
// @Failure      400            {object}  map[string]string
// @Failure      401            {object}  map[string]string
// @Failure      404            {object}  map[string]string
// @Failure      500            {object}  map[string]string
// @Router       /edit_user_info [post]
func (h *AccountHandler) EditUserInfo(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	var req editUserInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var input ports.EditUserInfoInput
	if req.NewUsername != "" {
		input.NewUsername = &req.NewUsername
	}
	if req.NewPassword != "" {
		input.NewPassword = &req.NewPassword
	}

	res, err := h.accounts.EditUserInfo(c.Request().Context(), token, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, editUserInfoResponse{
		Message:  "user info updated",
		Username: res.Username,
		Token:    res.Token,
	})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
