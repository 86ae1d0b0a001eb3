package domain

// Ledger is the ordered collection of transactions.
// Every appended entry gets a strictly increasing Seq, so entries created
// within the same instant still have a total order. Views are newest-first.
// A Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	entries []Transaction // oldest first
	nextSeq uint64
}

// NewLedger creates a ledger holding the given entries, oldest first.
func NewLedger(entries ...Transaction) *Ledger {
	l := &Ledger{}
	for _, tx := range entries {
		l.Append(tx)
	}
	return l
}

// Append stores tx as the newest entry and returns it with its Seq set.
func (l *Ledger) Append(tx Transaction) Transaction {
	l.nextSeq++
	tx.Seq = l.nextSeq
	l.entries = append(l.entries, tx)
	return tx
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a newest-first copy of the ledger.
func (l *Ledger) Entries() []Transaction {
	out := make([]Transaction, len(l.entries))
	for i, tx := range l.entries {
		out[len(l.entries)-1-i] = tx
	}
	return out
}

// Recent returns up to n newest entries.
func (l *Ledger) Recent(n int) []Transaction {
	all := l.Entries()
	if n < len(all) {
		return all[:n]
	}
	return all
}

// Latest returns the newest entry.
func (l *Ledger) Latest() (Transaction, bool) {
	if len(l.entries) == 0 {
		return Transaction{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// RemoveLatest drops and returns the newest entry.
func (l *Ledger) RemoveLatest() (Transaction, bool) {
	tx, ok := l.Latest()
	if !ok {
		return Transaction{}, false
	}
	l.entries = l.entries[:len(l.entries)-1]
	return tx, true
}

// ReplaceLatestAmount sets the newest entry's amount.
func (l *Ledger) ReplaceLatestAmount(amount float64) (Transaction, bool) {
	if len(l.entries) == 0 {
		return Transaction{}, false
	}
	last := &l.entries[len(l.entries)-1]
	last.Amount = amount
	return *last, true
}

// Update applies patch to the entry with the given id.
func (l *Ledger) Update(id string, patch TransactionPatch) (Transaction, bool) {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i] = patch.Apply(l.entries[i])
			return l.entries[i], true
		}
	}
	return Transaction{}, false
}

// Remove deletes the entry with the given id.
func (l *Ledger) Remove(id string) bool {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}
