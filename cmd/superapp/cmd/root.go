package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
	"github.com/ouge98-max/your-repo-sub000/internal/app"
	"github.com/ouge98-max/your-repo-sub000/internal/backend"
	"github.com/ouge98-max/your-repo-sub000/internal/config"
	"github.com/ouge98-max/your-repo-sub000/internal/connectivity"
	"github.com/ouge98-max/your-repo-sub000/internal/localstore"
	"github.com/ouge98-max/your-repo-sub000/internal/payment"
	"github.com/ouge98-max/your-repo-sub000/pkg/logging"
)

// sessionKey is where the bearer token lives in the local key/value store.
const sessionKey = "session"

var (
	cfgFile string
	format  string
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "superapp",
	Short: "Superapp - wallet payments and chat from the terminal",
	Long: output.HeaderStyle.Render(`
╔═══════════════════════════════════════════════╗
║  Superapp CLI - Wallet, Payments and Chat     ║
╚═══════════════════════════════════════════════╝
`) + `
Send money, pay bills, buy tickets and chat with other users.
Messages written while offline are queued and sent on reconnect.

Get started:
  superapp auth register    Create an account
  superapp auth login       Sign in
  superapp wallet balance   Check your balance
  superapp --help           Show all commands`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		output.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./superapp.yaml or ~/.superapp/superapp.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "output format: table, json")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "start with connectivity marked offline")
}

// session is one CLI invocation's client core and the resources behind it.
type session struct {
	cfg    *config.Config
	store  *localstore.Store
	client *backend.Client
	app    *app.App
}

func openSession() (*session, error) {
	cfg, err := config.Load("superapp", cfgFile)
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg.Log.Level, cfg.Log.Format)

	store, err := localstore.Open(cfg.Client.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	client := backend.New(http.DefaultClient, cfg.Client.APIURL)
	var token string
	if _, err := store.Get(context.Background(), sessionKey, &token); err != nil {
		store.Close()
		return nil, err
	}
	client.SetToken(token)

	a := app.New(app.Config{
		Backend:       client,
		Outbox:        store,
		Cache:         store,
		Monitor:       connectivity.NewMonitor(!offline),
		Notifier:      output.Toasts{},
		PIN:           payment.StaticPIN(cfg.Client.PIN),
		PollInterval:  cfg.Client.PollInterval,
		PushPublicKey: cfg.Client.PushPublicKey,
	})

	return &session{cfg: cfg, store: store, client: client, app: a}, nil
}

// signedIn opens a session and loads the current user, from the cache when
// offline and from the backend otherwise.
func signedIn(ctx context.Context) (*session, error) {
	s, err := openSession()
	if err != nil {
		return nil, err
	}
	if s.client.Token() == "" {
		s.Close()
		return nil, errors.New("not logged in. Run 'superapp auth login' first")
	}

	_, refreshed := s.app.Bootstrap(ctx)
	if err := <-refreshed; err != nil && s.app.CurrentUser() == nil {
		s.Close()
		return nil, err
	}
	if s.app.CurrentUser() == nil {
		s.Close()
		return nil, errors.New("no cached session available offline")
	}
	return s, nil
}

func (s *session) saveToken(ctx context.Context, token string) error {
	s.client.SetToken(token)
	return s.store.Put(ctx, sessionKey, token)
}

func (s *session) Close() error {
	return s.store.Close()
}

func jsonOutput() bool {
	return format == "json"
}

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	text, _ := reader.ReadString('\n')
	return strings.TrimSpace(text)
}
