package models

// PlaceholderImage maps a Category to the image shown when a product has
// no resolvable image URL.
var PlaceholderImage = map[Category]string{
	CategorySmartphones:       "/assets/placeholders/smartphone.png",
	CategoryTablets:           "/assets/placeholders/tablet.png",
	CategoryEarbuds:           "/assets/placeholders/earbuds.png",
	CategorySoundbars:         "/assets/placeholders/soundbar.png",
	CategoryPortableSpeakers:  "/assets/placeholders/speaker.png",
	CategoryBluetoothSpeakers: "/assets/placeholders/speaker.png",
	CategoryHeadphones:        "/assets/placeholders/headphones.png",
	CategoryHifiSystems:       "/assets/placeholders/hifi.png",
	CategoryGaming:            "/assets/placeholders/gaming.png",
	CategoryUnknown:           "/assets/placeholders/product.png",
}

// Placeholder returns the placeholder image for a Category.
// Returns the generic product image for unrecognised categories.
func (c Category) Placeholder() string {
	if img, ok := PlaceholderImage[c]; ok {
		return img
	}
	return PlaceholderImage[CategoryUnknown]
}

// IsAudio reports whether c is shown on the audio page.
func (c Category) IsAudio() bool {
	for _, a := range AudioCategories {
		if a == c {
			return true
		}
	}
	return false
}
