package limb

// Tier is the injury severity derived from a limb's hit-point ratio.
type Tier string

const (
	TierNone      Tier = "none"
	TierLight     Tier = "light"
	TierSevere    Tier = "severe"
	TierDestroyed Tier = "destroyed"
)

// Tier boundaries as percentages of MaxHP, shared by every category.
const (
	noneAbovePercent  = 75
	lightAbovePercent = 25
)

// InjuryTier derives the injury tier of l.
//
// Postcondition: CurrentHP <= 0 is always TierDestroyed; a limb with MaxHP <= 0
// and positive CurrentHP is TierNone.
func InjuryTier(l Limb) Tier {
	if l.CurrentHP <= 0 {
		return TierDestroyed
	}
	if l.MaxHP <= 0 {
		return TierNone
	}
	pct := l.CurrentHP * 100
	switch {
	case pct > noneAbovePercent*l.MaxHP:
		return TierNone
	case pct > lightAbovePercent*l.MaxHP:
		return TierLight
	default:
		return TierSevere
	}
}

var tierText = map[Category]map[Tier]string{
	CategoryHead: {
		TierNone:      "Без повреждений",
		TierLight:     "Лёгкое сотрясение",
		TierSevere:    "Тяжёлая черепно-мозговая травма",
		TierDestroyed: "Голова уничтожена",
	},
	CategoryTorso: {
		TierNone:      "Без повреждений",
		TierLight:     "Ушибы и ссадины",
		TierSevere:    "Переломы рёбер, внутреннее кровотечение",
		TierDestroyed: "Смертельное ранение",
	},
	CategoryArm: {
		TierNone:      "Без повреждений",
		TierLight:     "Растяжение",
		TierSevere:    "Перелом, рука почти не действует",
		TierDestroyed: "Рука потеряна",
	},
	CategoryLeg: {
		TierNone:      "Без повреждений",
		TierLight:     "Хромота",
		TierSevere:    "Перелом, передвижение затруднено",
		TierDestroyed: "Нога потеряна",
	},
}

// TierDescription returns the flavor text for tier on a limb of category c.
func TierDescription(c Category, tier Tier) string {
	if m, ok := tierText[c]; ok {
		if s, ok := m[tier]; ok {
			return s
		}
	}
	return string(tier)
}
