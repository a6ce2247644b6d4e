// Package aggregate merges ingredient quantities across steps, recipes and quick bites.
//
// Amounts of the same unit are summed; amounts of different units stay separate.
// Every merge keys on a canonical ingredient name, never on raw author text.
package aggregate

import (
	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
)

// Amounts is an ordered list of quantities, one per unit bucket. Unquantified
// records that at least one source named the ingredient without a usable amount.
type Amounts struct {
	Quantities   []models.Quantity `json:"quantities"`
	Unquantified bool              `json:"unquantified,omitempty"`
}

// AmountsOf builds Amounts from raw quantity texts such as "2 cups".
// Blank or unparseable text marks the result unquantified.
func AmountsOf(texts ...string) Amounts {
	var out Amounts
	for _, text := range texts {
		q, err := numeric.ParseQuantity(text)
		if err != nil || q == nil {
			out.Unquantified = true
			continue
		}
		out = MergeAmounts(out, Amounts{Quantities: []models.Quantity{*q}})
	}
	return out
}

// MergeAmounts sums same-unit quantities across lists. Units compare after
// inflector.NormalizeUnit; the empty unit is its own bucket. Buckets keep
// first-seen order.
func MergeAmounts(lists ...Amounts) Amounts {
	var (
		out   Amounts
		index = make(map[string]int)
	)
	for _, list := range lists {
		if list.Unquantified {
			out.Unquantified = true
		}
		for _, q := range list.Quantities {
			unit := inflector.NormalizeUnit(q.Unit)
			if i, ok := index[unit]; ok {
				out.Quantities[i].Value += q.Value
				continue
			}
			index[unit] = len(out.Quantities)
			out.Quantities = append(out.Quantities, models.Quantity{Value: q.Value, Unit: unit})
		}
	}
	return out
}

// Scaled multiplies every quantity by f.
func (a Amounts) Scaled(f float64) Amounts {
	out := Amounts{Unquantified: a.Unquantified}
	if len(a.Quantities) > 0 {
		out.Quantities = make([]models.Quantity, len(a.Quantities))
		for i, q := range a.Quantities {
			out.Quantities[i] = models.Quantity{Value: q.Value * f, Unit: q.Unit}
		}
	}
	return out
}

// Empty reports whether no source contributed anything.
func (a Amounts) Empty() bool {
	return len(a.Quantities) == 0 && !a.Unquantified
}

// Entry is an ingredient's merged amounts plus the titles that contributed them.
type Entry struct {
	Amounts Amounts  `json:"amounts"`
	Sources []string `json:"sources"`
}

// MergeEntries unions two entries. Sources keep first-seen order without duplicates.
func MergeEntries(a, b Entry) Entry {
	out := Entry{Amounts: MergeAmounts(a.Amounts, b.Amounts)}
	seen := make(map[string]struct{}, len(a.Sources)+len(b.Sources))
	for _, src := range append(append([]string{}, a.Sources...), b.Sources...) {
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out.Sources = append(out.Sources, src)
	}
	return out
}
