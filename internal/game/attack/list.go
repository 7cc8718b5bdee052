package attack

// Find returns the attack with id.
func Find(list []Attack, id string) (Attack, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Attack{}, false
}

// HasWeapon reports whether list already carries an attack derived from weaponID.
func HasWeapon(list []Attack, weaponID string) bool {
	for _, a := range list {
		if a.WeaponID == weaponID {
			return true
		}
	}
	return false
}

// AddWeapon appends a unless an attack with the same WeaponID is present.
//
// Postcondition: at most one attack per WeaponID; result never aliases list.
func AddWeapon(list []Attack, a Attack) ([]Attack, bool) {
	if HasWeapon(list, a.WeaponID) {
		return list, false
	}
	out := make([]Attack, 0, len(list)+1)
	out = append(out, list...)
	return append(out, a), true
}

// RemoveWeapon drops every attack whose WeaponID equals weaponID.
func RemoveWeapon(list []Attack, weaponID string) ([]Attack, bool) {
	if weaponID == "" || !HasWeapon(list, weaponID) {
		return list, false
	}
	out := make([]Attack, 0, len(list))
	for _, a := range list {
		if a.WeaponID != weaponID {
			out = append(out, a)
		}
	}
	return out, true
}

// Add appends a user attack. A weapon-derived attack or a duplicate id is refused.
func Add(list []Attack, a Attack) ([]Attack, bool) {
	if a.ID == "" || a.FromWeaponItem() {
		return list, false
	}
	if _, exists := Find(list, a.ID); exists {
		return list, false
	}
	out := make([]Attack, 0, len(list)+1)
	out = append(out, list...)
	return append(out, a), true
}

// Update replaces the attack with a.ID. The WeaponID link of the stored
// attack is preserved so edits cannot detach or forge a weapon attack.
func Update(list []Attack, a Attack) ([]Attack, bool) {
	idx := -1
	for i, v := range list {
		if v.ID == a.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, false
	}
	out := append([]Attack(nil), list...)
	a.WeaponID = list[idx].WeaponID
	out[idx] = a
	return out, true
}

// Delete removes the user attack with id. Weapon-derived attacks follow their
// weapon and are only removed by unequipping it.
func Delete(list []Attack, id string) ([]Attack, bool) {
	a, ok := Find(list, id)
	if !ok || a.FromWeaponItem() {
		return list, false
	}
	out := make([]Attack, 0, len(list)-1)
	for _, v := range list {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out, true
}
