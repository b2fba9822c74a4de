package model

import "strings"

// StoredImagePrefix marks an image field that points into the blob
// side table instead of holding a literal URL.
const StoredImagePrefix = "DB_IMAGE:"

// PlaceholderImageURL is shown for items without a resolvable image.
const PlaceholderImageURL = "https://placehold.co/100x100?text=No+Img"

// ImageRefKind discriminates the two encodings of an item's image
// field, plus the empty case.
type ImageRefKind int

const (
	ImageNone ImageRefKind = iota
	ImageLiteral
	ImageStored
)

// ImageRef is the decoded form of an item's image field: either a
// literal display URL or a reference into the image store. Decode once
// where the field is read; don't sniff the prefix elsewhere.
type ImageRef struct {
	Kind ImageRefKind
	URL  string // set when Kind == ImageLiteral
	ID   string // set when Kind == ImageStored
}

// ParseImageRef decodes the wire representation of an image field.
func ParseImageRef(field string) ImageRef {
	if field == "" {
		return ImageRef{Kind: ImageNone}
	}
	if id, ok := strings.CutPrefix(field, StoredImagePrefix); ok {
		return ImageRef{Kind: ImageStored, ID: id}
	}
	return ImageRef{Kind: ImageLiteral, URL: field}
}

// StoredImageRef returns the wire representation of a pointer into the
// image store for the given item id.
func StoredImageRef(id string) string {
	return StoredImagePrefix + id
}
