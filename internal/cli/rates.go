package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"valutatrade/internal/domain"
	"valutatrade/internal/service"
)

type updateRatesCmd struct {
	app    *App
	source string
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "refresh cached rates from the providers" }
func (*updateRatesCmd) Usage() string {
	return `update-rates [--source <name>]

  Pulls fresh rates from every configured provider (or only the one whose name
  starts with --source), overwrites the cached snapshot and appends history.
  A failing provider is skipped for this round, not fatal.
`
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "Only query providers whose name starts with this, e.g. 'coingecko'.")
}

func (c *updateRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("update-rates", func() error {
		report, err := c.app.deps.Updater.Run(ctx, c.source)
		if err != nil {
			return err
		}
		if err := c.app.deps.Rates.Reload(); err != nil {
			return err
		}

		if len(report.Sources) == 0 {
			fmt.Fprintln(c.app.out, "No provider matched; nothing updated.")
			return nil
		}
		fmt.Fprintf(c.app.out, "Updated %d pairs from %s.\n",
			report.Merged, strings.Join(report.Sources, ", "))
		if len(report.Failed) > 0 {
			fmt.Fprintf(c.app.out, "Skipped this round: %s (see log for details).\n",
				strings.Join(report.Failed, ", "))
		}
		return nil
	})
}

type getRateCmd struct {
	app  *App
	from string
	to   string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "show the cached rate for one directed pair" }
func (*getRateCmd) Usage() string {
	return `get-rate --from <code> --to <code>

  Prints the cached rate with its source and age. The reverse rate is shown
  only when the opposite pair is itself cached; it is never inferred.
`
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Currency being priced.")
	f.StringVar(&c.to, "to", "", "Currency the price is quoted in.")
}

func (c *getRateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("get-rate", func() error {
		from, err := domain.NormalizeCode(c.from)
		if err != nil {
			return err
		}
		to, err := domain.NormalizeCode(c.to)
		if err != nil {
			return err
		}

		pair, err := c.app.deps.Rates.Pair(from, to)
		if err != nil {
			return err
		}

		now := time.Now()
		stale := ""
		if c.app.deps.Rates.IsStale(from, to) {
			stale = " [stale]"
		}
		fmt.Fprintf(c.app.out, "1 %s = %s %s (source %s, updated %s)%s\n",
			from, pair.Rate, to, pair.Source, formatAge(pair.UpdatedAt, now), stale)

		if reverse, ok := c.app.deps.Rates.Reverse(from, to); ok {
			fmt.Fprintf(c.app.out, "1 %s = %s %s (source %s, updated %s)\n",
				to, reverse.Rate, from, reverse.Source, formatAge(reverse.UpdatedAt, now))
		}
		return nil
	})
}

type showRatesCmd struct {
	app      *App
	currency string
	base     string
	top      int
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "list cached rates" }
func (*showRatesCmd) Usage() string {
	return `show-rates [--currency <code>] [--base <code>] [--top <n>]

  Lists cached pairs with rate, source and age. --top keeps the N highest
  rates, sorted descending.
`
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Only pairs pricing this currency.")
	f.StringVar(&c.base, "base", "", "Only pairs quoted in this currency.")
	f.IntVar(&c.top, "top", 0, "Keep the N highest rates.")
}

func (c *showRatesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("show-rates", func() error {
		opts := service.ListOptions{Top: c.top}
		if c.currency != "" {
			normalized, err := domain.NormalizeCode(c.currency)
			if err != nil {
				return err
			}
			opts.Currency = normalized
		}
		if c.base != "" {
			normalized, err := domain.NormalizeCode(c.base)
			if err != nil {
				return err
			}
			opts.Base = normalized
		}

		pairs := c.app.deps.Rates.List(opts)
		if len(pairs) == 0 {
			fmt.Fprintln(c.app.out, "No cached rates match. Run 'update-rates' to fetch some.")
			return nil
		}

		now := time.Now()
		for _, p := range pairs {
			fmt.Fprintf(c.app.out, "%-10s %-16s %-16s %s\n",
				p.Key(), p.Rate, p.Source, formatAge(p.UpdatedAt, now))
		}
		if last := c.app.deps.Rates.LastRefresh(); !last.IsZero() {
			fmt.Fprintf(c.app.out, "Last refresh: %s\n", formatAge(last, now))
		}
		return nil
	})
}

type currenciesCmd struct {
	app *App
}

func (*currenciesCmd) Name() string           { return "currencies" }
func (*currenciesCmd) Synopsis() string       { return "list supported currencies" }
func (*currenciesCmd) Usage() string          { return "currencies\n" }
func (*currenciesCmd) SetFlags(*flag.FlagSet) {}

func (c *currenciesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("currencies", func() error {
		for _, code := range c.app.deps.Catalog.Codes() {
			cur, err := c.app.deps.Catalog.Get(code)
			if err != nil {
				continue
			}
			fmt.Fprintln(c.app.out, cur.DisplayInfo())
		}
		return nil
	})
}
