package fiber

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
	"github.com/lumenapp/server/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubGenerator struct{ response string }

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

type stubNotifier struct{}

func (stubNotifier) SendEmailCode(ctx context.Context, address, code string) error { return nil }
func (stubNotifier) SendSMSCode(ctx context.Context, number, code string) error    { return nil }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := services.NewFakeStore()
	passwords := crypto.NewArgon2()
	sessions, err := services.NewSessionIssuer(testSecret, services.DefaultSessionTTL, nil)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}
	phones := core.PhoneNormalizer{}
	log := zerolog.Nop()
	otps := services.NewOtpManager(store, passwords, nil)

	app := fiber.New()
	New(app, Services{
		Auth:      services.NewAuthService(store, passwords, sessions, phones, log),
		Reset:     services.NewResetService(store, passwords, otps, stubNotifier{}, phones, log),
		Federated: nil,
		Content:   services.NewContentService(store, &stubGenerator{response: "generated text"}, log),
		Sessions:  sessions,
	}, Options{ExposeResetCode: true, Logger: log}).RegisterRoutes()
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("unmarshal %q error = %v", raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response %v has no data object", body)
	}
	return d
}

func signUp(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/signup",
		`{"name":"Ann","email":"ann@example.com","password":"secret1","phone":"9876543210"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d, body %v", status, body)
	}
	token, _ := data(t, body)["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	return token
}

// Requirement: signup returns 201 with user and token; validation and
// uniqueness failures map to 400 and 409.
func TestSignupRoute(t *testing.T) {
	app := newTestApp(t)
	signUp(t, app)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "duplicate email", body: `{"name":"Bob","email":"ann@example.com","password":"secret1"}`, wantStatus: http.StatusConflict},
		{name: "short password", body: `{"name":"Bob","email":"bob@example.com","password":"123"}`, wantStatus: http.StatusBadRequest},
		{name: "missing email", body: `{"name":"Bob","password":"secret1"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodPost, "/auth/signup", test.body, "")
			if status != test.wantStatus {
				t.Errorf("status = %d, want %d", status, test.wantStatus)
			}
		})
	}
}

// Requirement: login failures are indistinguishable 401s whether the
// email is unknown or the password is wrong.
func TestLoginRoute(t *testing.T) {
	app := newTestApp(t)
	signUp(t, app)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid credentials", body: `{"email":"ann@example.com","password":"secret1"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"email":"ann@example.com","password":"wrong99"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown email", body: `{"email":"ghost@example.com","password":"secret1"}`, wantStatus: http.StatusUnauthorized},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodPost, "/auth/login", test.body, "")
			if status != test.wantStatus {
				t.Errorf("status = %d, want %d", status, test.wantStatus)
			}
		})
	}
}

// Requirement: protected routes reject missing or malformed bearer
// tokens and resolve the user from a valid one.
func TestCurrentUserRoute(t *testing.T) {
	app := newTestApp(t)
	token := signUp(t, app)

	status, body := doJSON(t, app, http.MethodGet, "/auth/currentUser", "", token)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	user, _ := data(t, body)["user"].(map[string]any)
	if user["email"] != "ann@example.com" {
		t.Errorf("email = %v", user["email"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("response leaked the password hash")
	}

	if status, _ := doJSON(t, app, http.MethodGet, "/auth/currentUser", "", ""); status != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", status)
	}
	if status, _ := doJSON(t, app, http.MethodGet, "/auth/currentUser", "", "garbage"); status != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", status)
	}
}

// Requirement: the full reset round trip works over HTTP, and the
// exposed code is only present because the option is on.
func TestPasswordResetRoutes(t *testing.T) {
	app := newTestApp(t)
	signUp(t, app)

	status, body := doJSON(t, app, http.MethodPost, "/auth/forgotpassword", `{"email":"ann@example.com"}`, "")
	if status != http.StatusOK {
		t.Fatalf("forgotpassword status = %d, body %v", status, body)
	}
	code, _ := data(t, body)["otp"].(string)
	if len(code) != 6 {
		t.Fatalf("exposed code = %q, want 6 digits", code)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/auth/resetpassword",
		`{"email":"ann@example.com","otp":"`+code+`","newPassword":"fresh99"}`, "")
	if status != http.StatusOK {
		t.Fatalf("resetpassword status = %d", status)
	}

	if status, _ := doJSON(t, app, http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"fresh99"}`, ""); status != http.StatusOK {
		t.Errorf("login with new password status = %d", status)
	}
	if status, _ := doJSON(t, app, http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"secret1"}`, ""); status != http.StatusUnauthorized {
		t.Errorf("login with old password status = %d, want 401", status)
	}
}

func TestResetPasswordRoute_Validation(t *testing.T) {
	app := newTestApp(t)
	signUp(t, app)

	tests := []struct {
		name string
		body string
	}{
		{name: "code too short", body: `{"email":"ann@example.com","otp":"123","newPassword":"fresh99"}`},
		{name: "code not numeric", body: `{"email":"ann@example.com","otp":"abcdef","newPassword":"fresh99"}`},
		{name: "missing password", body: `{"email":"ann@example.com","otp":"123456"}`},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodPost, "/auth/resetpassword", test.body, "")
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

// Requirement: content routes live behind authentication and persist the
// generated exchange.
func TestContentRoutes(t *testing.T) {
	app := newTestApp(t)
	token := signUp(t, app)

	if status, _ := doJSON(t, app, http.MethodPost, "/api/content/generate", `{"query":"hello"}`, ""); status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated generate status = %d, want 401", status)
	}

	status, body := doJSON(t, app, http.MethodPost, "/api/content/generate", `{"query":"hello"}`, token)
	if status != http.StatusCreated {
		t.Fatalf("generate status = %d, body %v", status, body)
	}
	created := data(t, body)
	if created["content"] != "generated text" {
		t.Errorf("content = %v", created["content"])
	}
	id, _ := created["id"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/api/content/"+id, "", token)
	if status != http.StatusOK {
		t.Fatalf("get by id status = %d", status)
	}
	if data(t, body)["id"] != id {
		t.Errorf("get by id returned %v", data(t, body)["id"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/content/user", "", token)
	if status != http.StatusOK {
		t.Fatalf("list status = %d, body %v", status, body)
	}
	list, ok := body["data"].([]any)
	if !ok || len(list) != 1 {
		t.Errorf("list = %v, want one record", body["data"])
	}
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/", "", "")
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body["message"] == "" {
		t.Error("health should report a message")
	}
}
