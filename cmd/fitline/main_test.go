package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/fitline/internal/config"
	"github.com/naveenspark/fitline/pkg/client"
)

func testToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// fakeAPI is an in-process fitline server.
type fakeAPI struct {
	t          *testing.T
	mu         sync.Mutex
	premium    bool
	successURL string
	cancelURL  string
	checks     []string
	access     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/login/":
		fmt.Fprintf(w, `{"access":%q,"refresh":"r1","user":{"id":1,"username":"ana"}}`, f.access)
	case "/logout/":
		fmt.Fprint(w, `{}`)
	case "/token/refresh/":
		fmt.Fprintf(w, `{"access":%q}`, f.access)
	case "/user/":
		fmt.Fprint(w, `{"id":1,"username":"ana","fitness_goal":"build_muscle","experience_level":"beginner"}`)
	case "/exercises/":
		fmt.Fprint(w, `[
			{"id":"1","name":"push-up","bodyPart":"chest","equipment":"body weight"},
			{"id":"2","name":"pull-up","bodyPart":"back","equipment":"body weight"},
			{"id":"3","name":"curl","bodyPart":"upper arms","equipment":"dumbbell"},
			{"id":"4","name":"squat","bodyPart":"upper legs","equipment":"barbell"}
		]`)
	case "/api/payments/create-checkout-session/":
		var req client.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Errorf("decode checkout request: %v", err)
		}
		f.successURL, f.cancelURL = req.SuccessURL, req.CancelURL
		fmt.Fprint(w, `{"url":"https://pay.example.com/c/pay/cs_test_9"}`)
	case "/api/payments/check-payment-status/":
		f.checks = append(f.checks, r.URL.Query().Get("session_id"))
		f.premium = true
		fmt.Fprint(w, `{"status":"paid","is_premium":true}`)
	case "/account/status/":
		fmt.Fprintf(w, `{"is_premium":%t}`, f.premium)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) callbacks() (success, cancel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.successURL, f.cancelURL
}

func (f *fakeAPI) setPremium(v bool) {
	f.mu.Lock()
	f.premium = v
	f.mu.Unlock()
}

func (f *fakeAPI) paymentChecks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.checks...)
}

func newTestApp(t *testing.T, input string, opts ...func(*config.Config)) (*app, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	api := &fakeAPI{t: t, access: testToken(t)}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIURL:       srv.URL,
		StateDir:     t.TempDir(),
		Timeout:      5 * time.Second,
		ChatTimeout:  5 * time.Second,
		RateBurst:    5,
		LogLevel:     "debug",
		CheckoutWait: 5 * time.Second,
		Entitlement: config.Entitlement{
			MaxAttempts:   3,
			Interval:      time.Millisecond,
			RedirectDelay: time.Millisecond,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	var out bytes.Buffer
	a, err := newApp(cfg, &out, strings.NewReader(input))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	a.open = func(string) error { return errors.New("no browser in tests") }
	return a, api, &out
}

func signIn(t *testing.T, a *app) {
	t.Helper()
	require.NoError(t, a.creds.Set(testToken(t), "r1"))
}

func TestLoginPromptsForPassword(t *testing.T) {
	a, api, out := newTestApp(t, "ana\nhunter22\n")
	require.NoError(t, a.dispatch(context.Background(), []string{"login"}))

	assert.Contains(t, out.String(), "Signed in as @ana")
	creds, ok := a.creds.Get()
	require.True(t, ok)
	assert.Equal(t, api.access, creds.Access)
}

func TestLoginMissingInput(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	err := a.dispatch(context.Background(), []string{"login", "ana"})
	require.Error(t, err)
}

func TestEnvSessionIsNotPersisted(t *testing.T) {
	tok := testToken(t)
	a, _, out := newTestApp(t, "", func(c *config.Config) {
		c.AccessToken = tok
		c.RefreshToken = "r1"
	})
	require.NoError(t, a.dispatch(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "Signed in as @ana")

	var saved string
	found, err := a.db.Get("access_token", &saved)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLogoutWithoutSession(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.dispatch(context.Background(), []string{"logout"}))
	assert.Contains(t, out.String(), "Already logged out.")
}

func TestLogoutDropsPremiumForNextAccount(t *testing.T) {
	a, api, out := newTestApp(t, "ben\nhunter22\n")
	ctx := context.Background()
	signIn(t, a)
	api.setPremium(true)
	require.NoError(t, a.dispatch(ctx, []string{"verify"}))
	ent, err := a.ledger.Load()
	require.NoError(t, err)
	require.True(t, ent.IsPremium)

	require.NoError(t, a.dispatch(ctx, []string{"logout"}))
	ent, err = a.ledger.Load()
	require.NoError(t, err)
	assert.False(t, ent.IsPremium)

	api.setPremium(false)
	require.NoError(t, a.dispatch(ctx, []string{"login"}))
	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"status"}))
	assert.Contains(t, out.String(), "Premium: no")
	assert.NotContains(t, out.String(), "Premium: yes")
}

func TestStatus(t *testing.T) {
	a, _, out := newTestApp(t, "")
	require.NoError(t, a.dispatch(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "Not signed in.")

	signIn(t, a)
	require.NoError(t, a.ledger.SetPending("cs_test_1"))
	out.Reset()
	require.NoError(t, a.dispatch(context.Background(), []string{"status"}))
	assert.Contains(t, out.String(), "Signed in as @ana (build muscle · beginner)")
	assert.Contains(t, out.String(), "Premium: no")
	assert.Contains(t, out.String(), "Checkout pending: cs_test_1")
}

func TestPlanGenerateExportImport(t *testing.T) {
	a, _, out := newTestApp(t, "")
	ctx := context.Background()
	require.ErrorIs(t, a.dispatch(ctx, []string{"plan", "generate"}), errNotSignedIn)

	signIn(t, a)
	require.NoError(t, a.dispatch(ctx, []string{"plan", "generate", "--days", "2"}))
	assert.Contains(t, out.String(), "Personalized Plan")
	assert.Contains(t, out.String(), "Day 2")
	assert.NotContains(t, out.String(), "Day 3")

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, a.dispatch(ctx, []string{"plan", "export", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Personalized Plan")

	other, _, otherOut := newTestApp(t, "")
	require.ErrorIs(t, other.dispatch(ctx, []string{"plan", "show"}), errNoPlan)
	require.NoError(t, other.dispatch(ctx, []string{"plan", "import", path}))
	assert.Contains(t, otherOut.String(), "with 2 days")
	require.NoError(t, other.dispatch(ctx, []string{"plan", "show"}))
	assert.Contains(t, otherOut.String(), "Day 1")
}

func TestPlanGenerateRejectsBadDays(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	signIn(t, a)
	err := a.dispatch(context.Background(), []string{"plan", "generate", "--days", "9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days must be between 2 and 6")
}

func TestSubscribeReconcilesCheckout(t *testing.T) {
	a, api, out := newTestApp(t, "")
	signIn(t, a)

	var opened string
	a.open = func(u string) error {
		opened = u
		success, _ := api.callbacks()
		go func() {
			resp, err := http.Get(strings.Replace(success, checkoutPlaceholder, "cs_test_9", 1))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	require.NoError(t, a.dispatch(context.Background(), []string{"subscribe"}))
	assert.Equal(t, "https://pay.example.com/c/pay/cs_test_9", opened)
	assert.Contains(t, out.String(), "premium")

	success, cancel := api.callbacks()
	assert.Contains(t, success, "session_id="+checkoutPlaceholder)
	assert.Contains(t, cancel, "/cancel?state=")
	assert.Equal(t, []string{"cs_test_9"}, api.paymentChecks())

	ent, err := a.ledger.Load()
	require.NoError(t, err)
	assert.True(t, ent.IsPremium)
	assert.Empty(t, ent.PendingSessionID)
}

func TestSubscribeCancelledKeepsPending(t *testing.T) {
	a, api, _ := newTestApp(t, "")
	signIn(t, a)
	a.open = func(string) error {
		_, cancel := api.callbacks()
		go func() {
			resp, err := http.Get(cancel)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	err := a.dispatch(context.Background(), []string{"subscribe"})
	require.ErrorIs(t, err, errCheckoutCancelled)
	id, err := a.ledger.Pending()
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", id)
}

func TestSubscribeRejectsForgedCallback(t *testing.T) {
	a, api, _ := newTestApp(t, "")
	signIn(t, a)
	a.cfg.CheckoutWait = 200 * time.Millisecond

	status := make(chan int, 1)
	a.open = func(string) error {
		success, _ := api.callbacks()
		forged := strings.Replace(success, "state=", "state=x", 1)
		go func() {
			resp, err := http.Get(forged)
			if err != nil {
				status <- 0
				return
			}
			resp.Body.Close()
			status <- resp.StatusCode
		}()
		return nil
	}

	err := a.dispatch(context.Background(), []string{"subscribe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fitline verify")
	assert.Equal(t, http.StatusForbidden, <-status)
}

func TestVerifyPendingCheckout(t *testing.T) {
	a, api, out := newTestApp(t, "")
	signIn(t, a)
	require.NoError(t, a.ledger.SetPending("cs_test_5"))

	require.NoError(t, a.dispatch(context.Background(), []string{"verify"}))
	assert.Contains(t, out.String(), "confirmed")
	assert.Equal(t, []string{"cs_test_5"}, api.paymentChecks())
}

func TestVerifyExhausted(t *testing.T) {
	a, api, _ := newTestApp(t, "")
	signIn(t, a)

	err := a.dispatch(context.Background(), []string{"verify"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "premium membership required")
	assert.Empty(t, api.paymentChecks())
}

func TestVerifyRequiresSession(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	err := a.dispatch(context.Background(), []string{"verify", "--session-id", "cs_1"})
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	err := a.dispatch(context.Background(), []string{"dance"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fitline help")
}

func TestPrintHelp(t *testing.T) {
	var b bytes.Buffer
	printHelp(&b)
	for _, want := range []string{"fitline subscribe", "fitline verify", "fitline plan generate"} {
		assert.Contains(t, b.String(), want)
	}
}
