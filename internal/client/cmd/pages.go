package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cryptopay/internal/client/api"
	"cryptopay/internal/client/draft"
	"cryptopay/internal/shared/models"
)

type pagesClient struct {
	deps *deps
}

func newPagesCmd(d *deps) *cobra.Command {
	p := &pagesClient{deps: d}
	cmd := &cobra.Command{Use: "pages", Short: "Manage payment pages"}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List your payment pages", RunE: p.list})
	cmd.AddCommand(&cobra.Command{Use: "show", Short: "Show a payment page", Args: cobra.ExactArgs(1), RunE: p.show})
	cmd.AddCommand(&cobra.Command{Use: "create", Short: "Create a payment page (interactive)", RunE: p.create})
	cmd.AddCommand(&cobra.Command{Use: "edit", Short: "Edit a payment page (interactive)", Args: cobra.ExactArgs(1), RunE: p.edit})
	cmd.AddCommand(&cobra.Command{Use: "delete", Short: "Delete a payment page", Args: cobra.ExactArgs(1), RunE: p.delete})
	return cmd
}

func (p *pagesClient) userID(cmd *cobra.Command) (string, error) {
	if id := p.deps.session().Current().UserID; id != "" {
		return id, nil
	}
	user, err := p.deps.client().UserDetails(cmd.Context())
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (p *pagesClient) list(cmd *cobra.Command, args []string) error {
	userID, err := p.userID(cmd)
	if err != nil {
		return err
	}
	pages, err := p.deps.client().PagesByUser(cmd.Context(), userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), `You haven't created any payment pages yet. You can create one with "cryptopay pages create".`)
			return nil
		}
		return fmt.Errorf("failed to fetch payment pages: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tUSD\tCRYPTO\tCURRENCY")
	for _, page := range pages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			page.ID, page.Title, truncate(page.Description, 40),
			draft.FormatAmount(page.AmountDetails.AmountUSD),
			draft.FormatAmount(page.AmountDetails.AmountCrypto),
			page.AmountDetails.Currency.CurrencyCode)
	}
	return w.Flush()
}

func (p *pagesClient) show(cmd *cobra.Command, args []string) error {
	page, err := p.deps.client().PaymentPage(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("payment page %s not found", args[0])
		}
		return err
	}
	printPage(cmd, page)
	return nil
}

func (p *pagesClient) create(cmd *cobra.Command, args []string) error {
	ctrl := draft.New(p.deps.client(), p.drawDraft(cmd), p.drawError(cmd))
	defer ctrl.Close()
	return p.runEditor(cmd, ctrl)
}

func (p *pagesClient) edit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	page, err := p.deps.client().PaymentPage(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch payment page: %w", err)
	}
	userID, err := p.userID(cmd)
	if err != nil {
		return err
	}
	if page.UserID != userID {
		return fmt.Errorf("payment page %s does not belong to you", args[0])
	}
	ctrl := draft.New(p.deps.client(), p.drawDraft(cmd), p.drawError(cmd))
	defer ctrl.Close()
	ctrl.Hydrate(page)
	fmt.Fprintln(cmd.OutOrStdout(), "Editing existing page: amounts and currency are fixed.")
	return p.runEditor(cmd, ctrl)
}

// runEditor is the interactive form. Each amount line typed is an edit that
// triggers a live conversion of the other field; the draft controller decides
// which responses are allowed to land.
func (p *pagesClient) runEditor(cmd *cobra.Command, ctrl *draft.Controller) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Commands: title <text> | desc <text> | usd <amount> | crypto <amount> | currency BTC|ETH | show | save | cancel")
	for {
		line, err := p.deps.promptLineErr(cmd, "> ")
		if err != nil {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		verb, rest, _ := strings.Cut(line, " ")
		switch verb {
		case "title":
			ctrl.SetTitle(strings.TrimSpace(rest))
		case "desc":
			ctrl.SetDescription(strings.TrimSpace(rest))
		case "usd":
			if ctrl.Snapshot().EditMode() {
				fmt.Fprintln(out, "Amounts are fixed once a page is created.")
				continue
			}
			ctrl.EditField(cmd.Context(), draft.FieldUSD, strings.TrimSpace(rest))
		case "crypto":
			if ctrl.Snapshot().EditMode() {
				fmt.Fprintln(out, "Amounts are fixed once a page is created.")
				continue
			}
			ctrl.EditField(cmd.Context(), draft.FieldCrypto, strings.TrimSpace(rest))
		case "currency":
			code := models.CurrencyCode(strings.ToUpper(strings.TrimSpace(rest)))
			if !code.Valid() {
				fmt.Fprintln(out, "Currency must be BTC or ETH.")
				continue
			}
			if ctrl.Snapshot().EditMode() {
				fmt.Fprintln(out, "Currency is fixed once a page is created.")
				continue
			}
			ctrl.SetCurrency(code)
		case "show":
			printDraft(cmd, ctrl.Snapshot())
		case "save":
			ctrl.Wait() // let in-flight conversions settle before validating
			if err := p.save(cmd, ctrl); err != nil {
				var verr *draft.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintln(out, verr.Message)
					continue
				}
				fmt.Fprintln(out, "Failed to save payment page:", err)
				continue // form state retained for retry
			}
			return nil
		case "cancel", "quit":
			fmt.Fprintln(out, "Cancelled.")
			return nil
		case "":
			continue
		default:
			fmt.Fprintln(out, "Unknown command:", verb)
		}
	}
}

func (p *pagesClient) save(cmd *cobra.Command, ctrl *draft.Controller) error {
	if err := ctrl.Validate(); err != nil {
		return err
	}
	usd, crypto, err := ctrl.Amounts()
	if err != nil {
		return err
	}
	d := ctrl.Snapshot()
	req := api.PageRequest{
		Title:        d.Title,
		Description:  d.Description,
		AmountUSD:    usd,
		AmountCrypto: crypto,
		CurrencyCode: d.CurrencyCode,
	}
	ctx := cmd.Context()
	if d.EditMode() {
		req.PageID = d.PageID
		if err := p.deps.client().UpdatePage(ctx, req); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Payment page updated.")
		return nil
	}
	page, err := p.deps.client().CreatePage(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Payment page created (id %s).\n", page.ID)
	return nil
}

func (p *pagesClient) delete(cmd *cobra.Command, args []string) error {
	answer := p.deps.promptLine(cmd, "Are you sure you want to delete this payment page? This action cannot be undone. [y/N] ")
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	if err := p.deps.client().DeletePage(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete payment page: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
	return nil
}

func (p *pagesClient) drawDraft(cmd *cobra.Command) func(draft.Draft) {
	return func(d draft.Draft) {
		fmt.Fprintf(cmd.OutOrStdout(), "[draft] USD=%s %s=%s\n", orDash(d.AmountUSD), d.CurrencyCode, orDash(d.AmountCrypto))
	}
}

func (p *pagesClient) drawError(cmd *cobra.Command) func(error) {
	return func(err error) {
		fmt.Fprintln(cmd.OutOrStdout(), err.Error())
	}
}

func printDraft(cmd *cobra.Command, d draft.Draft) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Title:       ", d.Title)
	fmt.Fprintln(out, "Description: ", d.Description)
	fmt.Fprintln(out, "Amount USD:  ", orDash(d.AmountUSD))
	fmt.Fprintln(out, "Amount Crypto:", orDash(d.AmountCrypto))
	fmt.Fprintln(out, "Currency:    ", d.CurrencyCode)
}

func printPage(cmd *cobra.Command, page models.PaymentPage) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, page.Title)
	fmt.Fprintln(out, page.Description)
	fmt.Fprintln(out, "Cryptocurrency:", page.AmountDetails.Currency.CurrencyCode)
	fmt.Fprintln(out, "Amount USD:", draft.FormatAmount(page.AmountDetails.AmountUSD))
	fmt.Fprintln(out, "Amount Crypto:", draft.FormatAmount(page.AmountDetails.AmountCrypto))
	fmt.Fprintln(out, "System wallet:", page.SystemWallet.WalletNumber)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
