package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Expenses", 2024, "2024 Expenses"},
		{"  Expenses ", 2024, "2024 Expenses"},
		{"2023 Expenses", 2024, "2023 Expenses"},
		{"1234Expenses", 2024, "2024 1234Expenses"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yearPrefixedName(tt.base, tt.year), "base %q", tt.base)
	}
}

func TestQuoteSheetName(t *testing.T) {
	assert.Equal(t, "'2024 Expenses'", quoteSheetName("2024 Expenses"))
	assert.Equal(t, "'Bob''s'", quoteSheetName("Bob's"))
}

func TestExpenseRowFollowsHeader(t *testing.T) {
	e := core.Expense{
		ID:            "exp-1",
		UserID:        "user-1",
		Amount:        core.Money{Cents: 1250},
		Category:      "Food",
		Date:          core.NewDate(2024, 3, 9),
		PaymentMethod: "UPI",
		Description:   "lunch",
	}
	row := expenseRow(e, sheets.ActionCreated)
	require.Len(t, row, len(sheets.Header))
	assert.Equal(t, []any{"2024-03-09", "Food", "UPI", "lunch", 12.5, "exp-1", "user-1", "created"}, row)
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:      "sheet-id",
		ServiceAccountFile: "/nonexistent/sa.json",
	}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestAppendExpense(t *testing.T) {
	var (
		gotPath  string
		gotQuery map[string][]string
		gotBody  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"'2024 Expenses'!A7:H7","updatedRows":1}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)

	c := NewWithService(svc, "sheet-id", "Expenses", log.Discard())
	ref, err := c.AppendExpense(ctx, core.Expense{
		ID:            "exp-1",
		UserID:        "user-1",
		Amount:        core.Money{Cents: 4000},
		Category:      "Bills",
		Date:          core.NewDate(2024, 11, 2),
		PaymentMethod: "Cash",
	}, sheets.ActionUpdated)
	require.NoError(t, err)

	assert.Equal(t, "'2024 Expenses'!A7:H7", ref)
	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-id/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotPath, "2024 Expenses")
	assert.Equal(t, []string{"USER_ENTERED"}, gotQuery["valueInputOption"])
	assert.Equal(t, []string{"INSERT_ROWS"}, gotQuery["insertDataOption"])

	require.Len(t, gotBody.Values, 1)
	row := gotBody.Values[0]
	require.Len(t, row, 8)
	assert.Equal(t, "2024-11-02", row[0])
	assert.Equal(t, "Bills", row[1])
	assert.Equal(t, 40.0, row[4])
	assert.Equal(t, "exp-1", row[5])
	assert.Equal(t, "updated", row[7])
}

func TestAppendExpense_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)

	c := NewWithService(svc, "sheet-id", "", log.Discard())
	_, err = c.AppendExpense(ctx, core.Expense{ID: "exp-1", Date: core.NewDate(2025, 1, 1)}, sheets.ActionCreated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append to sheet 2025 Expenses")
}

func TestAppendExpense_RequiresID(t *testing.T) {
	c := NewWithService(&gsheet.Service{}, "sheet-id", "Expenses", nil)
	_, err := c.AppendExpense(context.Background(), core.Expense{}, sheets.ActionCreated)
	assert.EqualError(t, err, "expense has no id")
}

func TestAppendExpense_NoService(t *testing.T) {
	c := NewWithService(nil, "sheet-id", "Expenses", nil)
	_, err := c.AppendExpense(context.Background(), core.Expense{ID: "x"}, sheets.ActionCreated)
	assert.EqualError(t, err, "sheets service not initialized")
}
