package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginProfile(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "flow@test.com", "password123")
	if userID == "" {
		t.Fatal("expected a user ID from registration")
	}

	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "flow@test.com" {
		t.Errorf("expected flow@test.com, got %v", user["email"])
	}

	loginToken, _ := app.loginUser(t, "flow@test.com", "password123")
	rec = app.request("GET", "/api/v1/profile", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with login token, got %d", rec.Code)
	}
}

func TestAuthFlow_RefreshRotation(t *testing.T) {
	app := setupApp(t)
	_, refreshToken, _ := app.registerUser(t, "rotate@test.com", "password123")

	// Exchange the refresh token for a new pair.
	rec := app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	newRefresh := result["refresh_token"].(string)
	if newRefresh == "" {
		t.Fatal("expected a new refresh token")
	}

	// The old refresh token was rotated out and must be rejected.
	rec = app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rotated-out token, got %d: %s", rec.Code, rec.Body.String())
	}

	// The new one still works.
	rec = app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, newRefresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for fresh token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_LockoutAfterRepeatedFailures(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "lockme@test.com", "password123")

	for i := 0; i < 5; i++ {
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"lockme@test.com","password":"wrong-password"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	// Even the correct password is rejected while the account is locked.
	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"lockme@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "ACCOUNT_LOCKED" {
		t.Errorf("expected ACCOUNT_LOCKED, got %v", errObj["code"])
	}
}

func TestAuthFlow_UnknownEmailIndistinguishable(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "known@test.com", "password123")

	recUnknown := app.request("POST", "/api/v1/auth/login",
		`{"email":"unknown@test.com","password":"password123"}`, "")
	recWrongPass := app.request("POST", "/api/v1/auth/login",
		`{"email":"known@test.com","password":"wrong-password"}`, "")

	if recUnknown.Code != http.StatusUnauthorized || recWrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", recUnknown.Code, recWrongPass.Code)
	}
	codeUnknown := parseJSON(t, recUnknown)["error"].(map[string]interface{})["code"]
	codeWrongPass := parseJSON(t, recWrongPass)["error"].(map[string]interface{})["code"]
	if codeUnknown != codeWrongPass {
		t.Errorf("expected identical error codes, got %v and %v", codeUnknown, codeWrongPass)
	}
}
