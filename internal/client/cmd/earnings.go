package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cryptopay/internal/client/api"
	"cryptopay/internal/client/draft"
	"cryptopay/internal/shared/models"
)

type earningsClient struct {
	deps *deps
}

func newEarningsCmd(d *deps) *cobra.Command {
	e := &earningsClient{deps: d}
	cmd := &cobra.Command{Use: "earnings", Short: "Earnings and withdrawals"}
	cmd.AddCommand(&cobra.Command{Use: "view", Short: "Show total earnings", RunE: e.view})
	cmd.AddCommand(&cobra.Command{Use: "history", Short: "Show withdrawal history", RunE: e.history})
	cmd.AddCommand(&cobra.Command{Use: "withdraw", Short: "Request a withdrawal", RunE: e.withdraw})

	report := &cobra.Command{Use: "report", Short: "Download the PDF earnings report", RunE: e.report}
	report.Flags().String("from", "", "Start date (YYYY-MM-DD, default 30 days ago)")
	report.Flags().String("to", "", "End date (YYYY-MM-DD, default today)")
	report.Flags().String("out", "EarningsReport.pdf", "Output file")
	cmd.AddCommand(report)
	return cmd
}

func (e *earningsClient) view(cmd *cobra.Command, args []string) error {
	earnings, err := e.deps.client().Earnings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch earnings: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Total Earnings")
	fmt.Fprintln(out, "BTC:", draft.FormatAmount(earnings.TotalEarningsBtc))
	fmt.Fprintln(out, "ETH:", draft.FormatAmount(earnings.TotalEarningsEth))
	fmt.Fprintln(out, "USD:", draft.FormatAmount(earnings.TotalEarningsUsd))
	return nil
}

func (e *earningsClient) history(cmd *cobra.Command, args []string) error {
	withdrawals, err := e.deps.client().WithdrawalHistory(cmd.Context())
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("failed to fetch withdrawals: %w", err)
	}
	if len(withdrawals) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "You have no withdrawal history.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAMOUNT\tCURRENCY\tSTATUS\tREQUESTED\tCOMPLETED")
	for _, wd := range withdrawals {
		completed := "Pending"
		if wd.CompletedDate != nil {
			completed = wd.CompletedDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			wd.ID,
			draft.FormatAmount(wd.AmountDetails.AmountCrypto),
			wd.AmountDetails.Currency.CurrencyCode,
			wd.Status,
			wd.RequestedDate.Format("2006-01-02"),
			completed)
	}
	return w.Flush()
}

func (e *earningsClient) withdraw(cmd *cobra.Command, args []string) error {
	amountRaw := e.deps.promptLine(cmd, "Amount: ")
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}
	wallet := e.deps.promptLine(cmd, "Wallet address: ")
	if wallet == "" {
		return fmt.Errorf("wallet address is required")
	}
	code := models.CurrencyCode(strings.ToUpper(e.deps.promptLine(cmd, "Currency (BTC/ETH): ")))
	if !code.Valid() {
		return fmt.Errorf("currency must be BTC or ETH")
	}
	if err := e.deps.client().Withdraw(cmd.Context(), wallet, amount, code); err != nil {
		return fmt.Errorf("failed to withdraw earnings: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Withdrawal requested.")
	return nil
}

func (e *earningsClient) report(cmd *cobra.Command, args []string) error {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		start = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		end = t
	}
	outPath, _ := cmd.Flags().GetString("out")

	pdf, err := e.deps.client().EarningsReport(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	if err := os.WriteFile(outPath, pdf, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s (%d bytes).\n", outPath, len(pdf))
	return nil
}
