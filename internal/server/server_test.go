package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/config"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/metrics"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/middleware"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models/dto"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage/storagetest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func testServer(t *testing.T, ping pingFunc) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "member-ledger",
		JWTTTL:               time.Hour,
		OperatorUsername:     "admin",
		OperatorPasswordHash: string(hash),
		CORSOrigins:          []string{"https://shop.example"},
		ImportMaxBytes:       1 << 20,
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()
	store := storagetest.NewMemoryStore()
	store.Seed(models.MemberInput{Name: "Alice", Phone: "111", Type: models.Saving, Balance: 60})

	deps := Deps{
		Ledger:   ledger.NewService(store, log, metrics.New(reg)),
		Registry: reg,
		Log:      log,
	}
	if ping != nil {
		deps.DB = ping
	}
	ts := httptest.NewServer(Handler(cfg, deps))
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, baseURL, password string) (*http.Response, dto.LoginResponse) {
	t.Helper()
	body := `{"username":"admin","password":"` + password + `"}`
	resp, err := http.Post(baseURL+"/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env.Data
}

func TestServer_LoginThenConsume(t *testing.T) {
	ts := testServer(t, nil)

	resp, _ := login(t, ts.URL, "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := login(t, ts.URL, "s3cret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	assert.EqualValues(t, 3600, out.ExpiresIn)

	unauth, err := http.Post(ts.URL+"/api/members/1/consume", "application/json", nil)
	require.NoError(t, err)
	unauth.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/members/1/consume", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	charged, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	charged.Body.Close()
	assert.Equal(t, http.StatusOK, charged.StatusCode)
	assert.Equal(t, "req-123", charged.Header.Get(middleware.RequestIDHeader))

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	text, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `member_ledger_consumptions_total{result="charged"} 1`)
}

func TestServer_Health(t *testing.T) {
	ok := testServer(t, func(context.Context) error { return nil })
	resp, err := http.Get(ok.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := testServer(t, func(context.Context) error { return errors.New("no route to host") })
	resp, err = http.Get(down.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := testServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/members", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://shop.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}
