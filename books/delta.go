/*
delta.go - Signed balance effect of one transaction on one account

PURPOSE:
  Every other computation in this package is a fold over Delta. It answers
  "by how much does this transaction move this account?" for any account,
  including accounts the transaction never mentions (zero).

RULES:
  income     destination (or source, when destination is empty)   +amount
  expense    source                                               -amount
             effective refund target                              +refund
             both (source == refund target)                       -amount + refund
  repayment  source only                                          -(amount - discount)
             destination only                                     +amount
             source == destination                                +discount
  transfer   source only                                          -amount
             destination only                                     +amount
             source == destination                                0
  any        unrelated account                                    0

  An expense refunded to a different account yields two independent deltas,
  one per account, each from its own Delta call.

SEE ALSO:
  - balance.go: Sums deltas into a current balance
  - replay.go: Folds deltas in chronological order
*/
package books

import "github.com/shopspring/decimal"

// Delta returns the signed change tx applies to account. It is pure and total.
func Delta(tx Transaction, account AccountID) decimal.Decimal {
	if account == "" {
		return decimal.Zero
	}
	isFrom := tx.Source == account
	isTo := tx.Destination == account

	switch tx.Type {
	case TxIncome:
		target := tx.Destination
		if target == "" {
			target = tx.Source
		}
		if target == account {
			return tx.Amount
		}
		return decimal.Zero

	case TxExpense:
		delta := decimal.Zero
		if isFrom {
			delta = delta.Sub(tx.Amount)
		}
		if tx.EffectiveRefundTarget() == account {
			delta = delta.Add(tx.Refund)
		}
		return delta

	case TxRepayment:
		switch {
		case isFrom && isTo:
			return tx.Discount
		case isFrom:
			return tx.Amount.Sub(tx.Discount).Neg()
		case isTo:
			return tx.Amount
		}
		return decimal.Zero

	case TxTransfer:
		switch {
		case isFrom && isTo:
			return decimal.Zero
		case isFrom:
			return tx.Amount.Neg()
		case isTo:
			return tx.Amount
		}
		return decimal.Zero
	}

	// Unknown tags only reach here from unvalidated input.
	return decimal.Zero
}
