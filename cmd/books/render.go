package main

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/warp/bookkeeping/books"
)

func BalancesMarkdown(accounts []books.Account, txs []books.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Balances")
	table := md.TableSet{
		Header: []string{"Account", "Kind", "Opening", "Current"},
		Rows:   [][]string{},
	}
	for _, a := range accounts {
		table.Rows = append(table.Rows, []string{
			a.Name(),
			string(books.ParseKind(string(a.Kind))),
			books.FormatMoney(a.OpeningBalance, a.Currency),
			books.FormatMoney(books.CurrentBalance(a, txs), a.Currency),
		})
	}
	doc.Table(table)

	return doc.String()
}

func HistoryMarkdown(a books.Account, entries []books.HistoryEntry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History for %s", a.Name()))
	doc.PlainText(fmt.Sprintf("Opening balance: %s", books.FormatMoney(a.OpeningBalance, a.Currency)))

	table := md.TableSet{
		Header: []string{"Date", "Transaction", "Type", "Change", "Before", "After"},
		Rows:   [][]string{},
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, []string{
			e.Transaction.At.String(),
			describe(e.Transaction),
			string(e.Transaction.Type),
			books.FormatMoney(e.Delta, a.Currency),
			books.FormatMoney(e.Balance.Before, a.Currency),
			books.FormatMoney(e.Balance.After, a.Currency),
		})
	}
	doc.Table(table)

	doc.PlainText(md.Bold(fmt.Sprintf("Current balance: %s",
		books.FormatMoney(books.FinalBalance(entries, a.OpeningBalance), a.Currency))))

	return doc.String()
}

func LedgerMarkdown(snap books.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Ledger")

	header := []string{"Date", "Transaction", "Type", "Amount"}
	for _, a := range snap.Accounts {
		header = append(header, a.Name())
	}
	table := md.TableSet{Header: header, Rows: [][]string{}}

	for _, row := range books.Ledger(snap.OpeningBalances(), snap.Transactions) {
		tx := row.Transaction
		cells := []string{tx.At.String(), describe(tx), string(tx.Type), tx.Amount.String()}
		for _, a := range snap.Accounts {
			rb, ok := row.Balances[a.ID]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, books.FormatMoney(rb.After, a.Currency))
		}
		table.Rows = append(table.Rows, cells)
	}
	doc.Table(table)

	return doc.String()
}

// SummaryMarkdown sums balances across accounts without currency conversion;
// the totals are formatted in the default currency.
func SummaryMarkdown(snap books.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	summary := books.Summarize(snap.Accounts, snap.Transactions)
	code := books.DefaultCurrency

	doc.H1("Net Worth")
	doc.Table(md.TableSet{
		Header: []string{md.Bold("Net Worth"), md.Bold(books.FormatMoney(summary.NetWorth, code))},
		Rows: [][]string{
			{"Assets", books.FormatMoney(summary.Assets, code)},
			{"Liabilities", books.FormatMoney(summary.Liabilities, code)},
		},
	})

	for _, g := range books.GroupByKind(snap.Accounts, snap.Transactions) {
		doc.H2(fmt.Sprintf("%s (%s)", g.Kind, books.FormatMoney(g.Total, code)))
		table := md.TableSet{Header: []string{"Account", "Balance"}, Rows: [][]string{}}
		for _, ab := range g.Accounts {
			table.Rows = append(table.Rows, []string{
				ab.Account.Name(),
				books.FormatMoney(ab.Balance, ab.Account.Currency),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}

func ProblemsMarkdown(path string, problems []error) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s: %d invalid record(s)", path, len(problems)))
	items := make([]string, len(problems))
	for i, p := range problems {
		items[i] = p.Error()
	}
	doc.BulletList(items...)

	return doc.String()
}

func describe(tx books.Transaction) string {
	if tx.Note != "" {
		return tx.Note
	}
	return string(tx.ID)
}
