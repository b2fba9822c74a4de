package model

// Character is one entry of the bundled, read-mostly character list.
// Characters created at runtime are stored as Items with the
// characters category; this richer shape only exists in the fallback
// dataset.
type Character struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	Description  string   `json:"description,omitempty"`
	Personality  string   `json:"personality,omitempty"`
	Origin       string   `json:"origin,omitempty"`
	RelatedItems []string `json:"relatedItems,omitempty"`
	Image        string   `json:"image,omitempty"`
}

// AsItem converts a bundled character record into the item shape used
// by the repository, so both collections render through one path.
func (c *Character) AsItem() Item {
	return Item{
		ID:          c.ID,
		Name:        c.Name,
		Category:    CategoryCharacters,
		Description: c.Description,
		History:     c.Origin,
		Image:       c.Image,
	}
}
