package model

import "time"

// Catalog is the single aggregate document holding the entire item
// collection. Every mutation is a read-modify-write of this document.
type Catalog struct {
	Items   []Item    `json:"items"`
	Created time.Time `json:"created"`
}

// FindItem returns the index of the item with the given id, or -1.
func (c *Catalog) FindItem(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// ImageBlob is one stored image payload, kept outside the aggregate so
// listing items never drags image data over the wire.
type ImageBlob struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Uploaded time.Time `json:"uploaded"`
}
