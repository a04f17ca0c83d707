package books

// =============================================================================
// ALIAS RESOLUTION - Record Store side, before the engine sees a snapshot
// =============================================================================

// AliasTable maps both identities and display names to account identities.
type AliasTable map[string]AccountID

// NewAliasTable indexes accounts by identity and display name. Two accounts
// sharing a display name is an error; a display name equal to another
// account's identity resolves to that identity.
func NewAliasTable(accounts []Account) (AliasTable, error) {
	table := make(AliasTable, 2*len(accounts))
	owner := make(map[string]AccountID, len(accounts))
	for _, a := range accounts {
		table[string(a.ID)] = a.ID
	}
	for _, a := range accounts {
		if a.DisplayName == "" || a.DisplayName == string(a.ID) {
			continue
		}
		if prev, ok := owner[a.DisplayName]; ok && prev != a.ID {
			return nil, &DuplicateDisplayNameError{DisplayName: a.DisplayName, First: prev, Second: a.ID}
		}
		owner[a.DisplayName] = a.ID
		if _, isID := table[a.DisplayName]; !isID {
			table[a.DisplayName] = a.ID
		}
	}
	return table, nil
}

// Resolve returns the identity for ref. Unknown references are returned as-is.
func (t AliasTable) Resolve(ref AccountID) AccountID {
	if ref == "" {
		return ""
	}
	if id, ok := t[string(ref)]; ok {
		return id
	}
	return ref
}

// ResolveTransaction rewrites every account reference of tx to an identity.
func (t AliasTable) ResolveTransaction(tx Transaction) Transaction {
	tx.Source = t.Resolve(tx.Source)
	tx.Destination = t.Resolve(tx.Destination)
	tx.RefundTarget = t.Resolve(tx.RefundTarget)
	return tx
}

// ResolveAliases returns a snapshot whose transactions reference accounts by
// identity only. The input snapshot is not modified.
func ResolveAliases(snap Snapshot) (Snapshot, error) {
	table, err := NewAliasTable(snap.Accounts)
	if err != nil {
		return Snapshot{}, err
	}
	txs := make([]Transaction, len(snap.Transactions))
	for i, tx := range snap.Transactions {
		txs[i] = table.ResolveTransaction(tx)
	}
	accounts := make([]Account, len(snap.Accounts))
	copy(accounts, snap.Accounts)
	return Snapshot{Accounts: accounts, Transactions: txs}, nil
}
