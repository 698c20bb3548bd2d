package game

import (
	"strconv"
	"strings"
)

var pronouns = map[Gender][3]string{
	GenderMale:   {"he", "his", "him"},
	GenderFemale: {"she", "her", "her"},
	GenderOther:  {"they", "their", "them"},
}

// RenderText fills the player placeholders in node text.
func RenderText(text string, p Player) string {
	if !strings.Contains(text, "{") {
		return text
	}
	pr, ok := pronouns[p.Gender]
	if !ok {
		pr = pronouns[GenderOther]
	}
	r := strings.NewReplacer(
		"{player_name}", p.Name,
		"{player_race}", p.Race,
		"{player_class}", p.ActiveClass,
		"{he_she}", pr[0],
		"{his_her}", pr[1],
		"{him_her}", pr[2],
		"{strength}", strconv.Itoa(p.Stats.Strength),
		"{intelligence}", strconv.Itoa(p.Stats.Intelligence),
		"{magic}", strconv.Itoa(p.Stats.Magic),
		"{vitality}", strconv.Itoa(p.Stats.Vitality),
		"{gold}", strconv.Itoa(p.Stats.Gold),
		"{reputation}", strconv.Itoa(p.Stats.Reputation),
	)
	return r.Replace(text)
}
