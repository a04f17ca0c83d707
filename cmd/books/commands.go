package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/factory"
)

var (
	ledgerFile = flag.String("f", "ledger.yaml", "Path to the ledger file (YAML or JSON)")
	currency   = flag.String("currency", "", "Default currency for accounts without one")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it")
)

// Commands are the report subcommands.
var Commands = []subcommands.Command{
	&balanceCmd{},
	&historyCmd{},
	&ledgerCmd{},
	&summaryCmd{},
}

// loadLedger decodes the ledger named by -f.
func loadLedger() (books.Snapshot, error) {
	if *currency != "" {
		books.DefaultCurrency = strings.ToUpper(*currency)
	}
	return factory.LoadLedger(*ledgerFile)
}

func printMarkdown(doc string) {
	if *plain {
		fmt.Print(doc)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Print(doc)
		return
	}
	fmt.Print(out)
}

// =============================================================================
// balance
// =============================================================================

type balanceCmd struct {
	account string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display current account balances" }
func (*balanceCmd) Usage() string {
	return `books balance [-a <account>]

  Displays the current balance of every account, or of a single account
  given by id or display name.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "account id or display name")
}

func (c *balanceCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	accounts := snap.Accounts
	if c.account != "" {
		a, err := findAccount(snap, c.account)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		accounts = []books.Account{a}
	}

	printMarkdown(BalancesMarkdown(accounts, snap.Transactions))
	return subcommands.ExitSuccess
}

// =============================================================================
// history
// =============================================================================

type historyCmd struct {
	account string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the running balance of one account" }
func (*historyCmd) Usage() string {
	return `books history -a <account>

  Replays the transactions touching an account in chronological order and
  shows the balance before and after each one.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "account id or display name")
}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-a must be provided")
		return subcommands.ExitUsageError
	}

	snap, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	a, err := findAccount(snap, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	printMarkdown(HistoryMarkdown(a, books.History(a.ID, a.OpeningBalance, snap.Transactions)))
	return subcommands.ExitSuccess
}

// =============================================================================
// ledger
// =============================================================================

type ledgerCmd struct{}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "display running balances of every account" }
func (*ledgerCmd) Usage() string {
	return `books ledger

  Replays every transaction once, in chronological order, and shows the
  balance after it of each account it touches.
`
}

func (*ledgerCmd) SetFlags(*flag.FlagSet) {}

func (*ledgerCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	printMarkdown(LedgerMarkdown(snap))
	return subcommands.ExitSuccess
}

// =============================================================================
// summary
// =============================================================================

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display net worth by account kind" }
func (*summaryCmd) Usage() string {
	return `books summary

  Displays total assets, total liabilities and net worth, followed by the
  accounts grouped by kind.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	printMarkdown(SummaryMarkdown(snap))
	return subcommands.ExitSuccess
}

// =============================================================================
// validate
// =============================================================================

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check a ledger file for invalid records" }
func (*validateCmd) Usage() string {
	return `books validate

  Parses the ledger file and lists every invalid record. Exits non-zero when
  any record is rejected.
`
}

func (*validateCmd) SetFlags(*flag.FlagSet) {}

func (*validateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := loadLedger()
	if err != nil {
		var le *factory.LedgerError
		if !errors.As(err, &le) {
			fmt.Fprintf(os.Stderr, "Error reading ledger %q: %v\n", *ledgerFile, err)
			return subcommands.ExitFailure
		}
		printMarkdown(ProblemsMarkdown(*ledgerFile, le.Problems))
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: %d accounts, %d transactions, ok\n", *ledgerFile, len(snap.Accounts), len(snap.Transactions))
	return subcommands.ExitSuccess
}

// findAccount looks an account up by id, then by display name.
func findAccount(snap books.Snapshot, ref string) (books.Account, error) {
	if a, ok := snap.Account(books.AccountID(ref)); ok {
		return a, nil
	}
	for _, a := range snap.Accounts {
		if a.DisplayName == ref {
			return a, nil
		}
	}
	return books.Account{}, fmt.Errorf("%w: %s", books.ErrAccountNotFound, ref)
}
