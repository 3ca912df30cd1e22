package integration

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

// monthOffset returns the "YYYY-MM" month n months away from the current one.
func monthOffset(n int) string {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0).Format("2006-01")
}

func TestRecurrenceFlow_FixedSavingLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "saver@test.com", "password123")

	asset := app.createAsset(t, token, "Nest Egg", "savings", "0")

	// Three future months at 500 each.
	rec := app.request("POST", "/api/v1/fixed-savings",
		fmt.Sprintf(`{"asset_id":%q,"title":"Monthly saving","amount":"500","scheduled_day":1,"start_month":%q,"end_month":%q}`,
			asset, monthOffset(1), monthOffset(3)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	definition := parseJSON(t, rec)["fixed_saving"].(map[string]interface{})
	definitionID := definition["id"].(string)

	assertAmount(t, app.assetBalance(t, token, asset), "1500")

	// Deactivating removes the future deposits and their balance effect.
	rec = app.request("PATCH", "/api/v1/fixed-savings/"+definitionID+"/active", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.assetBalance(t, token, asset), "0")

	// Reactivating regenerates them.
	rec = app.request("PATCH", "/api/v1/fixed-savings/"+definitionID+"/active", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.assetBalance(t, token, asset), "1500")

	// Raising the amount rebalances the future rows.
	rec = app.request("PUT", "/api/v1/fixed-savings/"+definitionID, `{"amount":"750"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.assetBalance(t, token, asset), "2250")

	// Deleting the definition debits the remaining deposits.
	rec = app.request("DELETE", "/api/v1/fixed-savings/"+definitionID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.assetBalance(t, token, asset), "0")
}

func TestRecurrenceFlow_FixedExpenseClampsScheduledDay(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "clamp@test.com", "password123")

	// Day 31 across January through March 2025: February only has 28 days.
	rec := app.request("POST", "/api/v1/fixed-expenses",
		`{"title":"Rent","amount":"1200","scheduled_day":31,"start_month":"2025-01","end_month":"2025-03"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/transactions?month=2025-02", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 generated row in 2025-02, got %d", len(data))
	}
	row := data[0].(map[string]interface{})
	if date := row["date"].(string); !strings.HasPrefix(date, "2025-02-28") {
		t.Errorf("expected date clamped to 2025-02-28, got %s", date)
	}
	if row["is_fixed"] != true {
		t.Error("expected generated row to be marked fixed")
	}
}

func TestRecurrenceFlow_GeneratedRowsImmutable(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "immutable@test.com", "password123")

	rec := app.request("POST", "/api/v1/fixed-expenses",
		`{"title":"Insurance","amount":"90","scheduled_day":15,"start_month":"2025-01","end_month":"2025-02"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/transactions?month=2025-01", "", token)
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 generated row, got %d", len(data))
	}
	rowID := data[0].(map[string]interface{})["id"].(string)

	// Direct edits and deletes of generated rows are rejected.
	rec = app.request("PUT", "/api/v1/transactions/"+rowID, `{"amount":"5"}`, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on edit, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "FIXED_RECORD_IMMUTABLE" {
		t.Errorf("expected FIXED_RECORD_IMMUTABLE, got %v", errObj["code"])
	}

	rec = app.request("DELETE", "/api/v1/transactions/"+rowID, "", token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on delete, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRecurrenceFlow_UpdateRegeneratesFutureOnly(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "regen@test.com", "password123")

	// Two elapsed months and two future months.
	rec := app.request("POST", "/api/v1/fixed-expenses",
		fmt.Sprintf(`{"title":"Gym","amount":"40","scheduled_day":1,"start_month":%q,"end_month":%q}`,
			monthOffset(-2), monthOffset(2)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	definitionID := parseJSON(t, rec)["fixed_expense"].(map[string]interface{})["id"].(string)

	rec = app.request("PUT", "/api/v1/fixed-expenses/"+definitionID, `{"amount":"55"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Elapsed rows keep the old amount.
	for _, m := range []string{monthOffset(-2), monthOffset(-1)} {
		rec = app.request("GET", "/api/v1/transactions?month="+m, "", token)
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 row in %s, got %d", m, len(data))
		}
		assertAmount(t, data[0].(map[string]interface{})["amount"], "40")
	}
}

func TestRecurrenceFlow_NetWorthTracksLedger(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "worth@test.com", "password123")

	rec := app.request("PUT", "/api/v1/goal", `{"target_amount":"100000","initial_amount":"500"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	app.createAsset(t, token, "Savings", "savings", "1000")

	rec = app.request("POST", "/api/v1/transactions", `{"type":"income","amount":"3000"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("income failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/transactions", `{"type":"expense","amount":"800"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/net-worth", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["net_worth"].(map[string]interface{})

	// 500 initial + 3000 income - 800 expense + 1000 assets = 3700
	assertAmount(t, summary["net_worth"], "3700")
	assertAmount(t, summary["total_assets"], "1000")
}
