package store

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameCollator compares names ignoring case and diacritics, so "Évans",
// "evans" and "EVANS" share a key.
var (
	collatorMu   sync.Mutex
	nameCollator = collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	collatorBuf  collate.Buffer
)

// NameKey returns the sort key stored alongside a name. Equal keys mean the
// names are duplicates; byte order of keys is the display order.
func NameKey(name string) []byte {
	collatorMu.Lock()
	defer collatorMu.Unlock()

	key := nameCollator.KeyFromString(&collatorBuf, name)
	out := make([]byte, len(key))
	copy(out, key)
	collatorBuf.Reset()
	return out
}
