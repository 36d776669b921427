package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/internal/browser"
	"github.com/naveenspark/fitline/internal/config"
	"github.com/naveenspark/fitline/internal/logging"
	"github.com/naveenspark/fitline/internal/store"
	"github.com/naveenspark/fitline/internal/tui"
	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/entitlement"
	"github.com/naveenspark/fitline/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var errNotSignedIn = errors.New("not signed in, run: fitline login")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("fitline " + version)
			return nil
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return nil
		}
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, os.Stdout, os.Stdin)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return a.dispatch(ctx, args)
}

// app holds the services shared by every command.
type app struct {
	cfg      *config.Config
	db       *store.DB
	creds    session.Store
	client   *client.Client
	guard    *session.Guard
	ledger   *entitlement.Ledger
	verifier *entitlement.Verifier
	log      *slog.Logger
	logFile  io.Closer
	out      io.Writer
	in       *bufio.Reader
	open     func(url string) error
}

func newApp(cfg *config.Config, out io.Writer, in io.Reader) (*app, error) {
	log, logFile, err := logging.Open(cfg.StateDir, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.StateDir)
	if err != nil {
		logFile.Close() //nolint:errcheck
		return nil, err
	}
	ledger := entitlement.NewLedger(db)
	saved, err := openCredentials(cfg, db)
	if err != nil {
		db.Close()      //nolint:errcheck
		logFile.Close() //nolint:errcheck
		return nil, err
	}
	// Premium belongs to the account: it goes when the session does.
	creds := session.Watch(saved, ledger.Reset)

	c := client.New(cfg.APIURL, creds,
		client.WithTimeout(cfg.Timeout),
		client.WithChatTimeout(cfg.ChatTimeout),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithLogger(log),
	)
	verifier := entitlement.NewVerifier(c, ledger, entitlement.Config{
		MaxAttempts:   cfg.Entitlement.MaxAttempts,
		Interval:      cfg.Entitlement.Interval,
		RedirectDelay: cfg.Entitlement.RedirectDelay,
	}, log)

	return &app{
		cfg:      cfg,
		db:       db,
		creds:    creds,
		client:   c,
		guard:    session.NewGuard(creds, session.Validator{}, log),
		ledger:   ledger,
		verifier: verifier,
		log:      log,
		logFile:  logFile,
		out:      out,
		in:       bufio.NewReader(in),
		open:     browser.Open,
	}, nil
}

// openCredentials prefers a session from the environment over the one
// saved in the state directory.
func openCredentials(cfg *config.Config, db *store.DB) (session.Store, error) {
	if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		return session.NewMemoryStore(cfg.AccessToken, cfg.RefreshToken), nil
	}
	return session.NewPersistentStore(db)
}

func (a *app) Close() error {
	err := a.db.Close()
	if cerr := a.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.runTUI()
	}
	switch args[0] {
	case "login":
		return a.runLogin(ctx, args[1:])
	case "register":
		return a.runRegister(ctx, args[1:])
	case "logout":
		return a.runLogout(ctx)
	case "status":
		return a.runStatus(ctx)
	case "plan":
		return a.runPlan(ctx, args[1:])
	case "subscribe":
		return a.runSubscribe(ctx)
	case "verify":
		return a.runVerify(ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q, see: fitline help", args[0])
}

func (a *app) runTUI() error {
	m := tui.NewApp(tui.Deps{
		Client:   a.client,
		Guard:    a.guard,
		Verifier: a.verifier,
		Ledger:   a.ledger,
		Docs:     a.db,
		Log:      a.log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// prompt reads one trimmed line after printing label.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) requireSession() error {
	if a.guard.Check() != session.Authorized {
		return errNotSignedIn
	}
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = a.prompt("username: "); err != nil {
			return err
		}
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as @%s\n", displayName(user, username))
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "account name (3-150 characters)")
	email := fs.String("email", "", "email address")
	goal := fs.String("goal", string(domain.GoalGeneralFitness), "build_muscle, lose_fat, increase_strength or general_fitness")
	level := fs.String("level", string(domain.LevelBeginner), "beginner, intermediate or advanced")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = a.prompt("username: "); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = a.prompt("email: "); err != nil {
			return err
		}
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	confirm, err := a.prompt("confirm password: ")
	if err != nil {
		return err
	}

	user, err := a.client.Register(ctx, client.RegisterRequest{
		Username:        *username,
		Email:           *email,
		Password:        password,
		Password2:       confirm,
		FitnessGoal:     domain.Goal(*goal),
		ExperienceLevel: domain.Level(*level),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome to fitline, @%s\n", displayName(user, *username))
	return nil
}

func (a *app) runLogout(ctx context.Context) error {
	if _, ok := a.creds.Get(); !ok {
		fmt.Fprintln(a.out, "Already logged out.")
		return nil
	}
	if err := a.client.Logout(ctx); err != nil {
		// The local session is gone either way.
		a.log.Warn("logout", logging.Err(err))
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) runStatus(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	me, err := a.client.GetMe(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as @%s (%s · %s)\n", me.Username, me.FitnessGoal.Label(), me.ExperienceLevel)

	ent, err := a.ledger.Load()
	if err != nil {
		return err
	}
	switch {
	case ent.IsPremium && !ent.VerifiedAt.IsZero():
		fmt.Fprintf(a.out, "Premium: yes (confirmed %s)\n", ent.VerifiedAt.Format(time.DateOnly))
	case ent.IsPremium:
		fmt.Fprintln(a.out, "Premium: yes")
	default:
		fmt.Fprintln(a.out, "Premium: no")
	}
	if ent.PendingSessionID != "" {
		fmt.Fprintf(a.out, "Checkout pending: %s (run: fitline verify)\n", ent.PendingSessionID)
	}
	return nil
}

// runVerify re-checks premium status, reconciling a checkout first when one
// is named or pending.
func (a *app) runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(a.out)
	sessionID := fs.String("session-id", "", "checkout session to reconcile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Verifying premium status...")
	var err error
	switch {
	case *sessionID != "":
		err = a.verifier.Reconcile(ctx, *sessionID)
	default:
		var had bool
		had, err = a.verifier.ReconcilePending(ctx)
		if !had && err == nil {
			err = a.verifier.Verify(ctx)
		}
	}
	return a.reportVerification(err)
}

func (a *app) reportVerification(err error) error {
	switch {
	case err == nil:
		printPremiumConfirmed(a.out)
		return nil
	case errors.Is(err, entitlement.ErrExhausted):
		return fmt.Errorf("premium membership required, subscribe with: fitline subscribe")
	case errors.Is(err, client.ErrSessionExpired):
		return fmt.Errorf("your session has expired, run: fitline login")
	}
	return err
}

func displayName(u *domain.User, fallback string) string {
	if u != nil && u.Username != "" {
		return u.Username
	}
	return fallback
}
