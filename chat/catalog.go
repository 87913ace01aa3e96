package chat

type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the fixed pair of selectable models. Fast is also the target of
// the automatic fallback.
type Catalog struct {
	Balanced ModelInfo `json:"balanced"`
	Fast     ModelInfo `json:"fast"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Balanced: ModelInfo{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Description: "Balanced model"},
		Fast:     ModelInfo{ID: "gpt-3.5-turbo", Name: "GPT-3.5", Description: "Fast responses"},
	}
}

// CatalogFor keeps the default names for known ids and uses the id itself as
// the display name otherwise.
func CatalogFor(balanced, fast string) Catalog {
	c := DefaultCatalog()
	if balanced != "" && balanced != c.Balanced.ID {
		c.Balanced = ModelInfo{ID: balanced, Name: balanced, Description: "Balanced model"}
	}
	if fast != "" && fast != c.Fast.ID {
		c.Fast = ModelInfo{ID: fast, Name: fast, Description: "Fast responses"}
	}
	return c
}

func (c Catalog) Models() []ModelInfo {
	return []ModelInfo{c.Balanced, c.Fast}
}

func (c Catalog) Lookup(id string) (ModelInfo, bool) {
	for _, m := range c.Models() {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}
