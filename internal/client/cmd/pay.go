package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cryptopay/internal/client/draft"
	"cryptopay/internal/client/payguest"
)

type payClient struct {
	deps *deps
}

// newPayCmd is the guest-facing payment page: no login required.
func newPayCmd(d *deps) *cobra.Command {
	p := &payClient{deps: d}
	return &cobra.Command{
		Use:   "pay <page-id>",
		Short: "Pay against a payment page and verify the transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  p.run,
	}
}

func (p *payClient) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	page, err := p.deps.client().PaymentPage(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch payment page: %w", err)
	}
	out := cmd.OutOrStdout()
	printPage(cmd, page)

	addressAck := payguest.NewCopyAck(nil)
	amountAck := payguest.NewCopyAck(nil)
	defer addressAck.Stop()
	defer amountAck.Stop()
	ctrl := payguest.New(p.deps.client())

	fmt.Fprintln(out, "Commands: address | amount | verify | quit")
	for {
		line, err := p.deps.promptLineErr(cmd, fmt.Sprintf("[address: %s | amount: %s] > ", addressAck.Label(), amountAck.Label()))
		if err != nil {
			return nil
		}
		switch strings.ToLower(line) {
		case "address":
			// Prints the wallet for copying; the ack label reverts on its own.
			fmt.Fprintln(out, page.SystemWallet.WalletNumber)
			addressAck.Trigger()
		case "amount":
			fmt.Fprintln(out, draft.FormatAmount(page.AmountDetails.AmountCrypto))
			amountAck.Trigger()
		case "verify":
			wallet := p.deps.promptLine(cmd, "Your wallet address: ")
			outcome := ctrl.Verify(ctx, page, wallet)
			if outcome.Navigate {
				// Terminal: there is no way back to the payment page.
				fmt.Fprintln(out, "Thank You!")
				fmt.Fprintln(out, "Your payment has been successfully verified.")
				return nil
			}
			fmt.Fprintln(out, "Payment Status:", outcome.Message)
		case "":
			continue
		case "quit":
			return nil
		default:
			fmt.Fprintln(out, "Unknown command:", line)
		}
	}
}
