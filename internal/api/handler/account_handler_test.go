package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/scoresync/account-service/internal/core/domain"
	"github.com/scoresync/account-service/internal/core/ports"
)

type stubAccountService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	loginFn         func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	logoutFn        func(ctx context.Context, token string) error
	resetPasswordFn func(ctx context.Context, username, newPassword string) error
	toggleSyncFn    func(ctx context.Context, token string, syncEnabled bool) error
	editUserInfoFn  func(ctx context.Context, token string, in ports.EditUserInfoInput) (*ports.EditUserInfoResult, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAccountService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAccountService) ResetPassword(ctx context.Context, username, newPassword string) error {
	return s.resetPasswordFn(ctx, username, newPassword)
}

func (s *stubAccountService) ToggleSync(ctx context.Context, token string, syncEnabled bool) error {
	return s.toggleSyncFn(ctx, token, syncEnabled)
}

func (s *stubAccountService) EditUserInfo(ctx context.Context, token string, in ports.EditUserInfoInput) (*ports.EditUserInfoResult, error) {
	return s.editUserInfoFn(ctx, token, in)
}

func newContext(method, path, body, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if token != "" {
		c.Set(TokenContextKey, token)
	}
	return c, rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func TestAccountHandler_Register_Success(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.Username != "alice" || in.Password != "pw123" || !in.SyncEnabled {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.RegisterResult{ID: "id-1"}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/register", `{"username":"alice","password":"pw123","sync_enabled":true}`, "")

	if err := NewAccountHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user_id"] != "id-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_Register_MissingSyncFlag(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPost, "/register", `{"username":"alice","password":"pw123"}`, "")

	err := NewAccountHandler(stub).Register(c)
	expectHTTPError(t, err, http.StatusBadRequest)
	if !strings.Contains(err.Error(), "sync_enabled is required") {
		t.Fatalf("expected field name in message, got %v", err)
	}
}

func TestAccountHandler_Register_InvalidPayload(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/register", `{"username":`, "")
	expectHTTPError(t, NewAccountHandler(&stubAccountService{}).Register(c), http.StatusBadRequest)
}

func TestAccountHandler_Register_PropagatesDomainError(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	c, _ := newContext(http.MethodPost, "/register", `{"username":"bob","password":"pw","sync_enabled":false}`, "")

	if err := NewAccountHandler(stub).Register(c); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAccountHandler_Login_OptionalSync(t *testing.T) {
	var got ports.LoginInput
	stub := &stubAccountService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			got = in
			return &ports.LoginResult{Token: "tok"}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`, "")
	if err := NewAccountHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.SyncEnabled != nil {
		t.Fatalf("expected nil sync flag, got %v", *got.SyncEnabled)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodPost, "/login", `{"username":"alice","password":"pw","sync_enabled":false}`, "")
	if err := NewAccountHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.SyncEnabled == nil || *got.SyncEnabled {
		t.Fatalf("expected sync flag false, got %v", got.SyncEnabled)
	}
}

func TestAccountHandler_ResetPassword(t *testing.T) {
	stub := &stubAccountService{
		resetPasswordFn: func(_ context.Context, username, newPassword string) error {
			if username != "alice" || newPassword != "fresh" {
				t.Fatalf("unexpected args: %s", username)
			}
			return nil
		},
	}
	c, rec := newContext(http.MethodPost, "/reset_password", `{"username":"alice","new_password":"fresh"}`, "")

	if err := NewAccountHandler(stub).ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Logout_PassesToken(t *testing.T) {
	stub := &stubAccountService{
		logoutFn: func(_ context.Context, token string) error {
			if token != "tok" {
				t.Fatalf("unexpected token %q", token)
			}
			return nil
		},
	}
	c, rec := newContext(http.MethodGet, "/logout", "", "tok")

	if err := NewAccountHandler(stub).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Logout_WithoutMiddleware(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/logout", "", "")
	if err := NewAccountHandler(&stubAccountService{}).Logout(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAccountHandler_SyncEnabled(t *testing.T) {
	var got *bool
	stub := &stubAccountService{
		toggleSyncFn: func(_ context.Context, _ string, syncEnabled bool) error {
			got = &syncEnabled
			return nil
		},
	}

	c, _ := newContext(http.MethodPost, "/sync_enabled", `{"sync_enabled":false}`, "tok")
	if err := NewAccountHandler(stub).SyncEnabled(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got == nil || *got {
		t.Fatalf("expected false to be forwarded, got %v", got)
	}

	c, _ = newContext(http.MethodPost, "/sync_enabled", `{}`, "tok")
	expectHTTPError(t, NewAccountHandler(stub).SyncEnabled(c), http.StatusBadRequest)
}

func TestAccountHandler_EditUserInfo(t *testing.T) {
	var got ports.EditUserInfoInput
	stub := &stubAccountService{
		editUserInfoFn: func(_ context.Context, _ string, in ports.EditUserInfoInput) (*ports.EditUserInfoResult, error) {
			got = in
			return &ports.EditUserInfoResult{Username: "alicia", Token: "new-tok"}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/edit_user_info", `{"new_username":"alicia","new_password":""}`, "tok")

	if err := NewAccountHandler(stub).EditUserInfo(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.NewUsername == nil || *got.NewUsername != "alicia" {
		t.Fatalf("expected new username to be forwarded, got %+v", got)
	}
	if got.NewPassword != nil {
		t.Fatalf("expected empty password to be ignored")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alicia" || resp["token"] != "new-tok" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
