package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/naveenspark/fitline/pkg/client"
)

// checkoutPlaceholder is replaced by the payment provider with the real
// session id when it redirects back.
const checkoutPlaceholder = "{CHECKOUT_SESSION_ID}"

var errCheckoutCancelled = errors.New("checkout cancelled")

// runSubscribe buys premium: a localhost listener receives the redirect
// from the hosted payment page, then the checkout is reconciled and premium
// verified. If the browser never comes back the session id stays pending
// for `fitline verify`.
func (a *app) runSubscribe(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("generate callback state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	doneCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
		select {
		case doneCh <- r.URL.Query().Get("session_id"):
		default:
		}
	})
	mux.HandleFunc("/cancel", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "Checkout cancelled. You can close this tab.") //nolint:errcheck
		select {
		case errCh <- errCheckoutCancelled:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && srvErr != http.ErrServerClosed {
			select {
			case errCh <- srvErr:
			default:
			}
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	// The placeholder must reach the provider unescaped.
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	checkout, err := a.client.CreateCheckoutSession(ctx, client.CheckoutRequest{
		SuccessURL: base + "/checkout?state=" + state + "&session_id=" + checkoutPlaceholder,
		CancelURL:  base + "/cancel?state=" + state,
	})
	if err != nil {
		return err
	}
	if checkout.SessionID != "" {
		if err := a.ledger.SetPending(checkout.SessionID); err != nil {
			return err
		}
	}
	a.log.Info("checkout started", "session_id", checkout.SessionID)

	fmt.Fprintln(a.out, "Opening browser to complete your payment...")
	if err := a.open(checkout.URL); err != nil {
		fmt.Fprintf(a.out, "Could not open browser. Visit this URL manually:\n  %s\n", checkout.URL)
	}

	var sessionID string
	select {
	case sessionID = <-doneCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.cfg.CheckoutWait):
		return fmt.Errorf("no payment confirmation within %s, run: fitline verify", a.cfg.CheckoutWait)
	}

	if sessionID == "" || sessionID == checkoutPlaceholder {
		sessionID = checkout.SessionID
	}
	fmt.Fprintln(a.out, "Payment received. Verifying premium status...")
	return a.reportVerification(a.verifier.Reconcile(ctx, sessionID))
}

const callbackHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>fitline</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
  background:#0f0d0c;color:#e4e4ec;
  font-family:'JetBrains Mono','SF Mono','Consolas',monospace;
  height:100vh;display:flex;align-items:center;justify-content:center;
}
.card{text-align:center}
.logo{font-size:30px;font-weight:700;letter-spacing:12px;margin-bottom:24px}
.logo span{display:inline-block;animation:glow 2.4s ease-in-out infinite}
.logo span:nth-child(odd){color:#fb923c}
.logo span:nth-child(even){color:#f97316}
.logo span:nth-child(2){animation-delay:.1s}
.logo span:nth-child(3){animation-delay:.2s}
.logo span:nth-child(4){animation-delay:.3s}
.logo span:nth-child(5){animation-delay:.4s}
.logo span:nth-child(6){animation-delay:.5s}
.logo span:nth-child(7){animation-delay:.6s}
@keyframes glow{0%,100%{opacity:.6}50%{opacity:1}}
.msg{font-size:14px;color:#4ade80;font-weight:600;margin-bottom:8px}
.sub{font-size:12px;color:#505868}
</style>
</head>
<body>
<div class="card">
  <div class="logo">
    <span>F</span><span>I</span><span>T</span><span>L</span><span>I</span><span>N</span><span>E</span>
  </div>
  <div class="msg">payment received</div>
  <div class="sub">return to your terminal to unlock premium</div>
</div>
</body>
</html>`
