// Package output renders CLI results: styled messages, tables and JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/notify"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	MoneyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

// Out is where results are written. Tests may replace it.
var Out io.Writer = os.Stdout

func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, string(data))
	return nil
}

func Header(title string) {
	fmt.Fprintln(Out, HeaderStyle.Render(title))
}

func Success(msg string) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ ")+msg)
}

func Error(msg string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+msg)
}

func Info(msg string) {
	fmt.Fprintln(Out, MutedStyle.Render(msg))
}

func Money(amount float64, currency string) string {
	return MoneyStyle.Render(fmt.Sprintf("%s %.2f", currency, amount))
}

func Table(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(Out)
	table.SetHeader(headers)
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetTablePadding(" ")
	table.AppendBulk(rows)
	table.Render()
}

func KeyValue(rows [][]string) {
	for _, r := range rows {
		fmt.Fprintf(Out, "  %s %s\n", MutedStyle.Render(fmt.Sprintf("%-16s", r[0]+":")), r[1])
	}
}

// FormatStatus colors a transaction or message status.
func FormatStatus(status string) string {
	switch status {
	case string(models.StatusCompleted), string(models.MessageSent):
		return SuccessStyle.Render(status)
	case string(models.StatusFailed), string(models.MessageFailed):
		return ErrorStyle.Render(status)
	default:
		return WarningStyle.Render(status)
	}
}

// Timestamp formats a Unix time for tables.
func Timestamp(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// Short trims an ID for display.
func Short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Toasts prints app notifications as styled lines on stderr.
type Toasts struct{}

func (Toasts) Notify(t notify.Toast) {
	switch t.Level {
	case notify.LevelSuccess:
		fmt.Fprintln(os.Stderr, SuccessStyle.Render("✓ ")+t.Message)
	case notify.LevelError:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+t.Message)
	default:
		fmt.Fprintln(os.Stderr, WarningStyle.Render("• ")+t.Message)
	}
}
