package character

import "github.com/cory-johannsen/charsheet/internal/game/ability"

// DefaultSkills returns the eighteen standard skills, none proficient.
func DefaultSkills() []Skill {
	return []Skill{
		{ID: "athletics", Name: "Атлетика", Attribute: ability.Strength},
		{ID: "acrobatics", Name: "Акробатика", Attribute: ability.Dexterity},
		{ID: "sleight_of_hand", Name: "Ловкость рук", Attribute: ability.Dexterity},
		{ID: "stealth", Name: "Скрытность", Attribute: ability.Dexterity},
		{ID: "arcana", Name: "Магия", Attribute: ability.Intelligence},
		{ID: "history", Name: "История", Attribute: ability.Intelligence},
		{ID: "investigation", Name: "Анализ", Attribute: ability.Intelligence},
		{ID: "nature", Name: "Природа", Attribute: ability.Intelligence},
		{ID: "religion", Name: "Религия", Attribute: ability.Intelligence},
		{ID: "animal_handling", Name: "Уход за животными", Attribute: ability.Wisdom},
		{ID: "insight", Name: "Проницательность", Attribute: ability.Wisdom},
		{ID: "medicine", Name: "Медицина", Attribute: ability.Wisdom},
		{ID: "perception", Name: "Восприятие", Attribute: ability.Wisdom},
		{ID: "survival", Name: "Выживание", Attribute: ability.Wisdom},
		{ID: "deception", Name: "Обман", Attribute: ability.Charisma},
		{ID: "intimidation", Name: "Запугивание", Attribute: ability.Charisma},
		{ID: "performance", Name: "Выступление", Attribute: ability.Charisma},
		{ID: "persuasion", Name: "Убеждение", Attribute: ability.Charisma},
	}
}

// FindSkill returns the skill with id.
func (c *Character) FindSkill(id string) (Skill, bool) {
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

func (c *Character) skillIndex(id string) int {
	for i, s := range c.Skills {
		if s.ID == id {
			return i
		}
	}
	return -1
}
