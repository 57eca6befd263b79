package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/bajeti/core"
	"github.com/trezcool/bajeti/core/budget"
	"github.com/trezcool/bajeti/core/planning"
	"github.com/trezcool/bajeti/core/user"
	inmemdb "github.com/trezcool/bajeti/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                         {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}

type testEnv struct {
	server    Server
	conf      *core.Config
	db        *inmemdb.DB
	usrSvc    *user.Service
	budgetSvc *budget.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Bajeti",
		SecretKey: "0d1dd9cb9f7d4965a58f296d57ca8ab9",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}
	db := inmemdb.NewDB()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	budgetSvc := budget.NewService(inmemdb.NewBudgetRepository(db), nil)
	planSvc := planning.NewService(planning.DefaultConfig(), inmemdb.NewPlanningRepository(db))

	server := NewServer(&Options{
		Conf:           conf,
		Logger:         nopLogger{},
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		BudgetSvc:      budgetSvc,
		PlanningSvc:    planSvc,
	})
	return &testEnv{server: server, conf: conf, db: db, usrSvc: usrSvc, budgetSvc: budgetSvc}
}

func (env *testEnv) createUser(t *testing.T, uname string, roles []string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            uname,
		Username:        uname,
		Email:           uname + "@test.cd",
		Password:        "LordOfTheFries",
		PasswordConfirm: "LordOfTheFries",
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return usr
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(env.conf, GetUserClaims(env.conf, usr))
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func (env *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoHeaderContentType, "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "awesomeuser", []string{user.RoleFinance})

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "ok", body: `{"username": "awesomeuser", "password": "LordOfTheFries"}`, wantCode: http.StatusOK},
		{name: "by email", body: `{"username": "awesomeuser@test.cd", "password": "LordOfTheFries"}`, wantCode: http.StatusOK},
		{name: "wrong password", body: `{"username": "awesomeuser", "password": "nope"}`, wantCode: http.StatusBadRequest},
		{name: "unknown user", body: `{"username": "ghost", "password": "LordOfTheFries"}`, wantCode: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/v1/users/login", "", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body)
			}
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Errorf("expected a token, got %s", rec.Body)
				}
			}
		})
	}
}

func TestBudgetPermissions(t *testing.T) {
	env := newTestEnv(t)
	finance := env.token(t, env.createUser(t, "financeuser", []string{user.RoleFinance}))
	reviewer := env.token(t, env.createUser(t, "revieweruser", []string{user.RoleReviewer}))

	body := `{"name": "FY25 v1", "fiscal_year": 2025, "exchange_rate": "655.5"}`

	// reviewers cannot create budget versions
	if rec := env.request(t, http.MethodPost, "/v1/budgets", reviewer, body); rec.Code != http.StatusForbidden {
		t.Errorf("reviewer create: code = %d, want 403", rec.Code)
	}
	// unauthenticated requests are rejected
	if rec := env.request(t, http.MethodPost, "/v1/budgets", "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: code = %d, want 401", rec.Code)
	}

	rec := env.request(t, http.MethodPost, "/v1/budgets", finance, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("finance create: code = %d, want 201; body: %s", rec.Code, rec.Body)
	}
	var v budget.Version
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding version: %v", err)
	}

	// reviewers can read
	if rec = env.request(t, http.MethodGet, "/v1/budgets/"+v.ID, reviewer, ""); rec.Code != http.StatusOK {
		t.Errorf("reviewer read: code = %d, want 200", rec.Code)
	}
	// unknown version 404s
	if rec = env.request(t, http.MethodGet, "/v1/budgets/b0b0", reviewer, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown version: code = %d, want 404", rec.Code)
	}
}

func TestPlanningEndpoints(t *testing.T) {
	env := newTestEnv(t)
	finance := env.token(t, env.createUser(t, "financeuser", []string{user.RoleFinance}))

	rec := env.request(t, http.MethodPost, "/v1/budgets", finance,
		`{"name": "FY25 v1", "fiscal_year": 2025, "exchange_rate": "1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating version: code = %d; body: %s", rec.Code, rec.Body)
	}
	var v budget.Version
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding version: %v", err)
	}
	base := "/v1/budgets/" + v.ID + "/planning"

	// recalculating before any projections is a state conflict
	if rec = env.request(t, http.MethodPost, base+"/recalculate", finance, ""); rec.Code != http.StatusConflict {
		t.Errorf("premature recalculate: code = %d, want 409; body: %s", rec.Code, rec.Body)
	}

	body := `{"cohorts": [{"level": "6e", "base_count": 100, "scenario": "base", "horizon": 3}]}`
	rec = env.request(t, http.MethodPost, base+"/projections", finance, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("projecting: code = %d, want 201; body: %s", rec.Code, rec.Body)
	}
	var set planning.ProjectionSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decoding projection set: %v", err)
	}
	if len(set.Projections) != 1 || set.Projections[0].FinalCount() != 108 {
		t.Errorf("unexpected projection result: %s", rec.Body)
	}

	if rec = env.request(t, http.MethodGet, base+"/projections", finance, ""); rec.Code != http.StatusOK {
		t.Errorf("reading projections: code = %d, want 200", rec.Code)
	}

	// invalid scenario surfaces as a field error
	badBody := `{"cohorts": [{"level": "6e", "base_count": 100, "scenario": "aggressive", "horizon": 3}]}`
	if rec = env.request(t, http.MethodPost, base+"/projections", finance, badBody); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid scenario: code = %d, want 400; body: %s", rec.Code, rec.Body)
	}

	// planning routes 404 on unknown versions
	if rec = env.request(t, http.MethodGet, "/v1/budgets/b0b0/planning/gaps", finance, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown version: code = %d, want 404", rec.Code)
	}
}
