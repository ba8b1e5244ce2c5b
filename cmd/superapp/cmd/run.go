package cmd

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
	"github.com/ouge98-max/your-repo-sub000/internal/connectivity"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stay connected: poll chats and send queued messages",
	Long: `Keeps the client running. Chats are re-fetched on the poll interval and
queued messages are sent when connectivity comes back.

Type "offline" or "online" and press enter to flip the connectivity flag.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := signedIn(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	go watchConnectivity(os.Stdin, s.app.Monitor())

	output.Info("Running. Press Ctrl+C to stop.")
	if err := s.app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func watchConnectivity(in *os.File, m *connectivity.Monitor) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "online":
			m.Set(true)
		case "offline":
			m.Set(false)
		}
	}
}
