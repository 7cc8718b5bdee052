package inventory

// WeaponClass distinguishes melee from ranged weapons.
type WeaponClass string

const (
	// WeaponClassMelee is a hand-to-hand weapon.
	WeaponClassMelee WeaponClass = "melee"
	// WeaponClassRanged is a thrown or projectile weapon.
	WeaponClassRanged WeaponClass = "ranged"
)

// Defaults applied to a weapon with no damage information.
const (
	DefaultWeaponDamage     = "1d6"
	DefaultWeaponDamageType = "Физический"
)

// WeaponProps holds the weapon-only fields of an Item. Empty strings mean "unset".
type WeaponProps struct {
	Damage      string      `json:"damage,omitempty" yaml:"damage,omitempty"`
	DamageType  string      `json:"damageType,omitempty" yaml:"damage_type,omitempty"`
	WeaponClass WeaponClass `json:"weaponClass,omitempty" yaml:"weapon_class,omitempty"`
}

// DamageOrDefault returns the weapon damage expression, or DefaultWeaponDamage.
func (i Item) DamageOrDefault() string {
	if i.Weapon != nil && i.Weapon.Damage != "" {
		return i.Weapon.Damage
	}
	return DefaultWeaponDamage
}

// DamageTypeOrDefault returns the weapon damage type, or DefaultWeaponDamageType.
func (i Item) DamageTypeOrDefault() string {
	if i.Weapon != nil && i.Weapon.DamageType != "" {
		return i.Weapon.DamageType
	}
	return DefaultWeaponDamageType
}

// IsMelee reports whether the weapon class is melee.
func (i Item) IsMelee() bool {
	return i.Weapon != nil && i.Weapon.WeaponClass == WeaponClassMelee
}

// IsRanged reports whether the weapon class is ranged.
func (i Item) IsRanged() bool {
	return i.Weapon != nil && i.Weapon.WeaponClass == WeaponClassRanged
}
