package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
	"valutatrade/internal/infra"
	"valutatrade/internal/ledger"
)

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "must be a number"}
	}
	return amount, nil
}

func printReceipt(app *App, r *ledger.Receipt) {
	verb := "Bought"
	effect := "cost"
	if r.Side == domain.SideSell {
		verb = "Sold"
		effect = "proceeds"
	}
	fmt.Fprintf(app.out, "%s %s %s @ %s %s — %s %s %s.\n",
		verb, r.Amount, r.Currency, r.Rate, r.BaseCurrency,
		effect, r.BaseAmount.StringFixed(2), r.BaseCurrency)
	fmt.Fprintf(app.out, "Balances: %s %s, %s %s.\n",
		r.Currency, r.CurrencyBalance, r.BaseCurrency, r.BaseBalance.StringFixed(2))
}

type buyCmd struct {
	app      *App
	currency string
	amount   string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a currency against the base wallet" }
func (*buyCmd) Usage() string {
	return `buy --currency <code> --amount <n>

  Debits the base wallet by the converted cost and credits the target wallet,
  creating it on first purchase. The order settles in full or not at all.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code to buy, e.g. BTC.")
	f.StringVar(&c.amount, "amount", "", "Amount of the currency to buy.")
}

func (c *buyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("buy", func() error {
		user, err := c.app.requireLogin()
		if err != nil {
			return err
		}
		amount, err := parseAmount(c.amount)
		if err != nil {
			return err
		}
		receipt, err := c.app.deps.Ledger.Buy(user, c.currency, amount)
		if err != nil {
			return err
		}
		infra.GlobalMetrics.RecordTrade()
		printReceipt(c.app, receipt)
		return nil
	})
}

type sellCmd struct {
	app      *App
	currency string
	amount   string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a held currency back into the base wallet" }
func (*sellCmd) Usage() string {
	return `sell --currency <code> --amount <n>

  Withdraws from the currency wallet and credits the base wallet with the
  converted proceeds. The wallet must already exist.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code to sell, e.g. BTC.")
	f.StringVar(&c.amount, "amount", "", "Amount of the currency to sell.")
}

func (c *sellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("sell", func() error {
		user, err := c.app.requireLogin()
		if err != nil {
			return err
		}
		amount, err := parseAmount(c.amount)
		if err != nil {
			return err
		}
		receipt, err := c.app.deps.Ledger.Sell(user, c.currency, amount)
		if err != nil {
			return err
		}
		infra.GlobalMetrics.RecordTrade()
		printReceipt(c.app, receipt)
		return nil
	})
}

type portfolioCmd struct {
	app  *App
	base string
}

func (*portfolioCmd) Name() string     { return "show-portfolio" }
func (*portfolioCmd) Synopsis() string { return "show wallet balances and total value" }
func (*portfolioCmd) Usage() string {
	return `show-portfolio [--base <code>]

  Lists all wallets and the portfolio total converted into the base currency
  (or another currency given with --base).
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "Currency to value the portfolio in. Defaults to the configured base.")
}

func (c *portfolioCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("show-portfolio", func() error {
		user, err := c.app.requireLogin()
		if err != nil {
			return err
		}

		base := c.app.deps.BaseCurrency
		if c.base != "" {
			normalized, err := domain.NormalizeCode(c.base)
			if err != nil {
				return err
			}
			base = normalized
		}

		p, err := c.app.deps.Ledger.Portfolio(user)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.app.out, "Portfolio of %s:\n", user.Username)
		for _, w := range p.Wallets() {
			fmt.Fprintf(c.app.out, "  %-5s %s\n", w.Currency, w.Balance)
		}

		total, ok := p.TotalValue(c.app.deps.Rates.Table(), base)
		if !ok {
			fmt.Fprintf(c.app.out, "Total (%s): n/a — some holdings have no cached rate; run 'update-rates'.\n", base)
			return nil
		}
		fmt.Fprintf(c.app.out, "Total (%s): %s\n", base, total.StringFixed(2))
		return nil
	})
}

type historyCmd struct {
	app   *App
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show your most recent trades" }
func (*historyCmd) Usage() string {
	return `history [--limit <n>]

  Lists your settled trades from the audit log, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 10, "Maximum number of trades to show.")
}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("history", func() error {
		user, err := c.app.requireLogin()
		if err != nil {
			return err
		}
		trades, err := c.app.deps.History.TradesForUser(user.ID, c.limit)
		if err != nil {
			return &domain.SystemError{Op: "load trade history", Err: err}
		}
		if len(trades) == 0 {
			fmt.Fprintln(c.app.out, "No trades yet.")
			return nil
		}
		for _, tx := range trades {
			fmt.Fprintf(c.app.out, "%s  %-4s %s %s @ %s — %s %s\n",
				tx.CreatedAt.Format("2006-01-02 15:04:05"),
				tx.Side, tx.Amount, tx.Currency, tx.Rate,
				tx.BaseAmount.StringFixed(2), tx.BaseCurrency)
		}
		return nil
	})
}
