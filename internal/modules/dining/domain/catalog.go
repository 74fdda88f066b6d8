package domain

// CalendarIDs lists every dining hall the eatery API publishes a calendar for.
var CalendarIDs = []string{
	"104west",
	"amit_bhatia_libe_cafe",
	"atrium_cafe",
	"bear_necessities",
	"bears_den",
	"becker_house_dining_room",
	"big_red_barn",
	"cafe_jennie",
	"carols_cafe",
	"cascadeli",
	"cook_house_dining_room",
	"cornell_dairy_bar",
	"goldies",
	"green_dragon",
	"ivy_room",
	"jansens_dining_room,_bethe_house",
	"jansens_market",
	"keeton_house_dining_room",
	"marthas_cafe",
	"mattins_cafe",
	"north_star",
	"okenshields",
	"risley_dining",
	"robert_purcell_marketplace_eatery",
	"rose_house_dining_room",
	"rustys",
	"synapsis_cafe",
	"trillium",
}

// MenuIDs lists the dining halls that expose a menu. Every entry is also in CalendarIDs.
var MenuIDs = []string{
	"cook_house_dining_room",
	"becker_house_dining_room",
	"keeton_house_dining_room",
	"rose_house_dining_room",
	"jansens_dining_room,_bethe_house",
	"robert_purcell_marketplace_eatery",
	"north_star",
	"risley_dining",
	"104west",
	"okenshields",
}

// Catalog is an ordered set of identifiers with constant-time membership checks.
type Catalog struct {
	ids   []string
	index map[string]struct{}
}

// NewCatalog builds a catalog preserving the first occurrence order of ids. Empty ids are skipped.
func NewCatalog(ids []string) Catalog {
	c := Catalog{ids: make([]string, 0, len(ids)), index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, seen := c.index[id]; seen {
			continue
		}
		c.index[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
	return c
}

// Contains reports whether id belongs to the catalog. Matching is exact.
func (c Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns a copy of the catalog entries in order.
func (c Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Len returns the number of identifiers in the catalog.
func (c Catalog) Len() int {
	return len(c.ids)
}

// DefaultCalendarCatalog returns the catalog of all known dining halls.
func DefaultCalendarCatalog() Catalog {
	return NewCatalog(CalendarIDs)
}

// DefaultMenuCatalog returns the catalog of menu-capable dining halls.
func DefaultMenuCatalog() Catalog {
	return NewCatalog(MenuIDs)
}

var menuCatalog = DefaultMenuCatalog()

// IsMenuCapable reports whether id is one of the halls that publish menus.
func IsMenuCapable(id string) bool {
	return menuCatalog.Contains(id)
}
