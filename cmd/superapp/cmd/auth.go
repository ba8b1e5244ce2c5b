package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Register, login, and manage your session.",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your account",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear cached data",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var (
	emailFlag    string
	nameFlag     string
	phoneFlag    string
	passwordFlag string
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&emailFlag, "email", "e", "", "account email")
		c.Flags().StringVar(&passwordFlag, "password", "", "account password")
	}
	registerCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "display name")
	registerCmd.Flags().StringVarP(&phoneFlag, "phone", "p", "", "mobile number")
}

func runRegister(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	email := orPrompt(emailFlag, "Email")
	name := orPrompt(nameFlag, "Name")
	password := orPrompt(passwordFlag, "Password")

	resp, err := s.client.Register(cmd.Context(), email, name, phoneFlag, password)
	if err != nil {
		return err
	}
	return finishLogin(cmd, s, resp, "Account created")
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	email := orPrompt(emailFlag, "Email")
	password := orPrompt(passwordFlag, "Password")

	resp, err := s.client.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	return finishLogin(cmd, s, resp, "Logged in")
}

func finishLogin(cmd *cobra.Command, s *session, resp *rpc.AuthResponse, msg string) error {
	ctx := cmd.Context()
	if err := s.saveToken(ctx, resp.Token); err != nil {
		return err
	}
	if err := s.app.RefreshData(ctx); err != nil {
		return err
	}

	if jsonOutput() {
		return output.JSON(resp.User)
	}
	output.Success(fmt.Sprintf("%s as %s", msg, resp.User.Name))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		return err
	}
	if err := s.app.Logout(ctx); err != nil {
		return err
	}
	output.Success("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	u := s.app.CurrentUser()
	if jsonOutput() {
		return output.JSON(u)
	}
	output.KeyValue([][]string{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Phone", u.Phone},
	})
	return nil
}

func orPrompt(value, label string) string {
	if value != "" {
		return value
	}
	return prompt(label)
}
