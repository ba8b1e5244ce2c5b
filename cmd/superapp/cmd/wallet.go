package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet commands",
	Long:  "Check balances, browse transactions and list other users.",
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show wallet and savings balance",
	RunE:  runBalance,
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "View transaction history",
	RunE:  runTransactions,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users you can pay or chat with",
	RunE:  runUsers,
}

var limitFlag int

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(balanceCmd, transactionsCmd, usersCmd)

	transactionsCmd.Flags().IntVar(&limitFlag, "limit", 20, "number of transactions")
}

func runBalance(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	u := s.app.CurrentUser()
	if jsonOutput() {
		return output.JSON(map[string]any{
			"balance":         u.Balance,
			"savings_balance": u.SavingsBalance,
			"currency":        u.Currency,
		})
	}

	output.Header("Wallet Balance")
	fmt.Println()
	output.KeyValue([][]string{
		{"Wallet", output.Money(u.Balance, u.Currency)},
		{"Savings", output.Money(u.SavingsBalance, u.Currency)},
	})
	return nil
}

func runTransactions(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	txs, err := s.client.ListTransactions(cmd.Context(), limitFlag)
	if err != nil {
		return err
	}
	if jsonOutput() {
		return output.JSON(txs)
	}
	if len(txs) == 0 {
		output.Info("No transactions yet.")
		return nil
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			output.Short(tx.ID),
			string(tx.Type),
			fmt.Sprintf("%.2f %s", tx.Amount, tx.Currency),
			tx.Peer,
			output.FormatStatus(string(tx.Status)),
			output.Timestamp(tx.Timestamp),
		})
	}
	output.Table([]string{"ID", "Type", "Amount", "Peer", "Status", "Date"}, rows)
	return nil
}

func runUsers(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	users := s.app.Users()
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	if jsonOutput() {
		return output.JSON(users)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Name, u.Email, u.Phone})
	}
	output.Table([]string{"ID", "Name", "Email", "Phone"}, rows)
	return nil
}
