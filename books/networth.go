package books

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NET WORTH SUMMARY
// =============================================================================

// Summary partitions account balances into assets and liabilities.
// A non-negative balance is an asset and a negative balance a liability,
// regardless of the account kind.
type Summary struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	NetWorth    decimal.Decimal
}

// Summarize folds the current balance of every account into a Summary.
// The accounts slice is not modified.
func Summarize(accounts []Account, txs []Transaction) Summary {
	assets := decimal.Zero
	liabilities := decimal.Zero
	for _, a := range accounts {
		balance := CurrentBalance(a, txs)
		if balance.IsNegative() {
			liabilities = liabilities.Add(balance.Abs())
		} else {
			assets = assets.Add(balance)
		}
	}
	return Summary{
		Assets:      assets,
		Liabilities: liabilities,
		NetWorth:    assets.Sub(liabilities),
	}
}

// =============================================================================
// KIND GROUPS - Secondary view, same totals
// =============================================================================

// AccountBalance pairs an account with its current balance.
type AccountBalance struct {
	Account Account
	Balance decimal.Decimal
}

// KindGroup is the accounts of one kind with their summed balance.
type KindGroup struct {
	Kind     Kind
	Total    decimal.Decimal
	Accounts []AccountBalance
}

// GroupByKind groups accounts by kind in KindOrder. Unknown kinds are folded
// into KindOther, which sorts last. Within a group accounts keep input order.
// Empty groups are omitted.
func GroupByKind(accounts []Account, txs []Transaction) []KindGroup {
	byKind := make(map[Kind]*KindGroup)
	for _, a := range accounts {
		kind := ParseKind(string(a.Kind))
		g, ok := byKind[kind]
		if !ok {
			g = &KindGroup{Kind: kind, Total: decimal.Zero}
			byKind[kind] = g
		}
		balance := CurrentBalance(a, txs)
		g.Total = g.Total.Add(balance)
		g.Accounts = append(g.Accounts, AccountBalance{Account: a, Balance: balance})
	}

	groups := make([]KindGroup, 0, len(byKind))
	for _, g := range byKind {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Kind.rank() < groups[j].Kind.rank()
	})
	return groups
}
