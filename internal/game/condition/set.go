package condition

import "slices"

// ID identifies a condition such as "poisoned" or "exhausted".
type ID string

// Has reports whether set contains id.
func Has(set []ID, id ID) bool {
	return slices.Contains(set, id)
}

// Add returns a copy of set with id appended when absent, and whether it changed.
func Add(set []ID, id ID) ([]ID, bool) {
	if id == "" || Has(set, id) {
		return set, false
	}
	out := make([]ID, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id), true
}

// Remove returns a copy of set without id, and whether it changed.
func Remove(set []ID, id ID) ([]ID, bool) {
	if !Has(set, id) {
		return set, false
	}
	out := make([]ID, 0, len(set)-1)
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out, true
}

// Dedupe returns ids without empty values or repeats, keeping first-seen order.
//
// Postcondition: result never aliases ids.
func Dedupe(ids []ID) []ID {
	out := make([]ID, 0, len(ids))
	seen := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
