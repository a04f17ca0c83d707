package books_test

import (
	"github.com/shopspring/decimal"
	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(date, clock string) books.Timestamp {
	return books.Timestamp{Date: date, Time: clock}
}

func account(id string, opening string) books.Account {
	return books.Account{ID: books.AccountID(id), DisplayName: id, Kind: books.KindBank, OpeningBalance: dec(opening)}
}

func income(id, date, amount, dest string) books.Transaction {
	return books.Transaction{
		ID: books.TransactionID(id), At: at(date, ""), Type: books.TxIncome,
		Amount: dec(amount), Destination: books.AccountID(dest),
	}
}

func expense(id, date, amount, refund, source string) books.Transaction {
	return books.Transaction{
		ID: books.TransactionID(id), At: at(date, ""), Type: books.TxExpense,
		Amount: dec(amount), Refund: dec(refund), Source: books.AccountID(source),
	}
}

func transfer(id, date, amount, source, dest string) books.Transaction {
	return books.Transaction{
		ID: books.TransactionID(id), At: at(date, ""), Type: books.TxTransfer,
		Amount: dec(amount), Source: books.AccountID(source), Destination: books.AccountID(dest),
	}
}

func repayment(id, date, amount, discount, source, dest string) books.Transaction {
	return books.Transaction{
		ID: books.TransactionID(id), At: at(date, ""), Type: books.TxRepayment,
		Amount: dec(amount), Discount: dec(discount),
		Source: books.AccountID(source), Destination: books.AccountID(dest),
	}
}

// decEqual compares by value so that 850 and 850.00 are equal.
func decEqual(a, b decimal.Decimal) bool {
	return a.Equal(b)
}
