/*
books - Command-line reports over a ledger file

USAGE:

	books [-f ledger.yaml] [-currency EUR] [-plain] <command> [flags]

COMMANDS:

	balance   Current balance of every account (or one with -a)
	history   Running balance of one account, transaction by transaction
	ledger    Running balances of every account, in chronological order
	summary   Net worth, assets and liabilities, grouped by account kind
	validate  Check a ledger file and list every invalid record

Reports are rendered as markdown. On a terminal they go through glamour;
-plain prints the raw markdown.
*/
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range Commands {
		commander.Register(c, "reports")
	}
	commander.Register(&validateCmd{}, "files")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
