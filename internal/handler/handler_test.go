package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/volunteer-credits/internal/config"
	"github.com/iliyamo/volunteer-credits/internal/database/databasetest"
	"github.com/iliyamo/volunteer-credits/internal/router"
)

type testApp struct {
	t  *testing.T
	e  *echo.Echo
	db *sqlx.DB
}

func newApp(t *testing.T, env string) *testApp {
	t.Helper()
	return newAppWithOwnership(t, env, true)
}

func newAppWithOwnership(t *testing.T, env string, strict bool) *testApp {
	t.Helper()
	db := databasetest.New(t)
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := router.New(router.Deps{
		Cfg: config.Config{
			Env:             env,
			JWTSecret:       "test-secret",
			AccessTTLMin:    15,
			RefreshTTLDays:  7,
			BcryptCost:      4,
			StrictOwnership: strict,
		},
		DB:  db,
		Log: quiet,
	})
	return &testApp{t: t, e: e, db: db}
}

// do sends a JSON request; token may be empty.
func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID       string `json:"id"`
		UserType string `json:"userType"`
		Credits  int    `json:"credits"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func (a *testApp) register(username, userType string) authBody {
	a.t.Helper()
	body := map[string]any{
		"username": username,
		"password": "secret123",
		"name":     "Test " + username,
		"email":    username + "@example.com",
		"userType": userType,
	}
	if userType == "police" {
		body["badgeNumber"] = "B-" + username
	}
	rec := a.do(http.MethodPost, "/api/register", "", body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](a.t, rec)
}

func (a *testApp) count(table string) int {
	a.t.Helper()
	var n int
	require.NoError(a.t, a.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func opportunityBody(reward any) map[string]any {
	return map[string]any{
		"title":            "Traffic Duty",
		"description":      "Help direct traffic at the festival",
		"category":         "traffic_management",
		"location":         "Bandra",
		"date":             "2025-01-15",
		"duration":         "4",
		"volunteersNeeded": 10,
		"creditsReward":    reward,
	}
}

func msg(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["message"].(string)
}
