package stage

// HuntingStages are the nine SA2B hunting arenas in tourney declaration order.
var HuntingStages = []Stage{
	{Name: "Wild Canyon", Aliases: []string{"WC", "wild", "canyon"}},
	{Name: "Pumpkin Hill", Aliases: []string{"PH", "pumpkin", "hill"}},
	{Name: "Death Chamber", Aliases: []string{"DC", "death", "chamber"}},
	{Name: "Aquatic Mine", Aliases: []string{"AM", "aquatic", "mine"}},
	{Name: "Meteor Herd", Aliases: []string{"MH", "meteor", "herd"}},
	{Name: "Dry Lagoon", Aliases: []string{"DL", "dry", "lagoon"}},
	{Name: "Egg Quarters", Aliases: []string{"EQ", "egg", "quarters"}},
	{Name: "Security Hall", Aliases: []string{"SH", "security", "hall"}},
	{Name: "Mad Space", Aliases: []string{"MS", "mad", "space"}},
}

// Hunting builds the tourney catalog. It panics only if HuntingStages is
// edited into an inconsistent state.
func Hunting() *Catalog {
	c, err := NewCatalog(HuntingStages)
	if err != nil {
		panic(err)
	}
	return c
}
