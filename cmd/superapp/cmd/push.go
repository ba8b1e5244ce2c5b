package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push notification commands",
}

var pushEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Register a push endpoint for new-message notifications",
	RunE:  runPushEnable,
}

var (
	endpointFlag string
	p256dhFlag   string
	pushAuthFlag string
)

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.AddCommand(pushEnableCmd)

	pushEnableCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "push service endpoint URL")
	pushEnableCmd.Flags().StringVar(&p256dhFlag, "p256dh", "", "client public key")
	pushEnableCmd.Flags().StringVar(&pushAuthFlag, "auth", "", "client auth secret")
	pushEnableCmd.MarkFlagRequired("endpoint")
	pushEnableCmd.MarkFlagRequired("p256dh")
	pushEnableCmd.MarkFlagRequired("auth")
}

func runPushEnable(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	sub, err := s.app.EnablePush(cmd.Context(), endpointFlag, p256dhFlag, pushAuthFlag)
	if err != nil {
		return err
	}
	if jsonOutput() {
		return output.JSON(sub)
	}
	output.KeyValue([][]string{
		{"Endpoint", sub.Endpoint},
		{"Server key", sub.PublicKey},
	})
	return nil
}
