package resource

// Ledger operations never modify their input slice; each returns a new slice.
// An unknown id leaves the ledger unchanged and reports false.

// Find returns the resource with id and whether it exists.
func Find(list []Resource, id string) (Resource, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// Create appends r to a copy of list.
func Create(list []Resource, r Resource) []Resource {
	out := make([]Resource, 0, len(list)+1)
	out = append(out, list...)
	r.Max = max(r.Max, 0)
	r.Current = clamp(r.Current, 0, r.Max)
	return append(out, r)
}

// Update applies p to the resource with id.
//
// Postcondition: the updated resource satisfies 0 <= Current <= Max.
func Update(list []Resource, id string, p Patch) ([]Resource, bool) {
	return mapOne(list, id, p.Apply)
}

// Delete removes the resource with id.
func Delete(list []Resource, id string) ([]Resource, bool) {
	out := make([]Resource, 0, len(list))
	found := false
	for _, r := range list {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return list, false
	}
	return out, true
}

// Spend subtracts n from the resource with id, saturating at 0.
func Spend(list []Resource, id string, n int) ([]Resource, bool) {
	return mapOne(list, id, func(r Resource) Resource { return Adjust(r, -n) })
}

// Restore adds n to the resource with id, saturating at Max.
func Restore(list []Resource, id string, n int) ([]Resource, bool) {
	return mapOne(list, id, func(r Resource) Resource { return Adjust(r, n) })
}

// Refill sets the resource with id back to Max.
func Refill(list []Resource, id string) ([]Resource, bool) {
	return mapOne(list, id, RestoreToFull)
}

// RefillAll sets every resource back to Max, as after a long rest.
func RefillAll(list []Resource) []Resource {
	out := make([]Resource, len(list))
	for i, r := range list {
		out[i] = RestoreToFull(r)
	}
	return out
}

func mapOne(list []Resource, id string, fn func(Resource) Resource) ([]Resource, bool) {
	idx := -1
	for i, r := range list {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, false
	}
	out := make([]Resource, len(list))
	copy(out, list)
	out[idx] = fn(out[idx])
	return out, true
}
