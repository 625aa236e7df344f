package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Ledger is the persisted set of message identities already processed in any
// prior run. Membership means "seen", not "selected": losers of subject
// groups are recorded too.
type Ledger struct {
	path string
	seen map[string]struct{}
}

// LoadLedger reads the ledger file, treating a missing file as an empty set.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, seen: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	for _, id := range ids {
		l.seen[id] = struct{}{}
	}
	return l, nil
}

// Seen reports whether an identity was processed before.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.seen[id]
	return ok
}

// Add records an identity and persists the ledger immediately, so a crash
// later in the run cannot cause already-processed messages to be reprocessed.
func (l *Ledger) Add(id string) error {
	if _, ok := l.seen[id]; ok {
		return nil
	}
	l.seen[id] = struct{}{}
	return l.persist()
}

// Len returns the number of recorded identities.
func (l *Ledger) Len() int {
	return len(l.seen)
}

func (l *Ledger) persist() error {
	ids := make([]string, 0, len(l.seen))
	for id := range l.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
