// Package catalog holds the fixed bouquet catalog the recommendation engine
// draws from. Entries change only with a redeploy.
package catalog

import "strings"

type Bouquet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Meaning     string   `json:"meaning"`
	Image       string   `json:"image"`
	Price       string   `json:"price"`
	Flowers     []string `json:"flowers,omitempty"`
	Colors      []string `json:"colors,omitempty"`
}

var bouquets = []Bouquet{
	{
		ID:          "1",
		Name:        "Love's Embrace",
		Description: "A passionate arrangement of red roses and lilies",
		Meaning:     "Deep love and passion",
		Image:       "/placeholder.svg?height=200&width=200&text=Love's+Embrace",
		Price:       "$89.99",
		Flowers:     []string{"roses", "lilies"},
		Colors:      []string{"red"},
	},
	{
		ID:          "2",
		Name:        "Peaceful Harmony",
		Description: "White lilies and blue delphiniums create a serene arrangement",
		Meaning:     "Peace, tranquility, and harmony",
		Image:       "/placeholder.svg?height=200&width=200&text=Peaceful+Harmony",
		Price:       "$79.99",
		Flowers:     []string{"lilies", "delphiniums"},
		Colors:      []string{"white", "blue"},
	},
	{
		ID:          "3",
		Name:        "Joyful Celebration",
		Description: "Vibrant sunflowers and gerbera daisies",
		Meaning:     "Happiness, joy, and celebration",
		Image:       "/placeholder.svg?height=200&width=200&text=Joyful+Celebration",
		Price:       "$69.99",
		Flowers:     []string{"sunflowers", "gerbera daisies"},
		Colors:      []string{"yellow", "orange"},
	},
	{
		ID:          "4",
		Name:        "Sympathy & Remembrance",
		Description: "Elegant white roses and chrysanthemums",
		Meaning:     "Remembrance, sympathy, and respect",
		Image:       "/placeholder.svg?height=200&width=200&text=Sympathy+Remembrance",
		Price:       "$84.99",
		Flowers:     []string{"roses", "chrysanthemums"},
		Colors:      []string{"white"},
	},
	{
		ID:          "5",
		Name:        "New Beginnings",
		Description: "Fresh daisies and pink tulips",
		Meaning:     "New starts, innocence, and hope",
		Image:       "/placeholder.svg?height=200&width=200&text=New+Beginnings",
		Price:       "$74.99",
		Flowers:     []string{"daisies", "tulips"},
		Colors:      []string{"white", "pink"},
	},
	{
		ID:          "6",
		Name:        "Gratitude Bouquet",
		Description: "Pink and peach roses with eucalyptus",
		Meaning:     "Thankfulness and appreciation",
		Image:       "/placeholder.svg?height=200&width=200&text=Gratitude+Bouquet",
		Price:       "$64.99",
		Flowers:     []string{"roses", "eucalyptus"},
		Colors:      []string{"pink", "peach"},
	},
}

// All returns a copy of the catalog in catalog order.
func All() []Bouquet {
	out := make([]Bouquet, len(bouquets))
	copy(out, bouquets)
	return out
}

func Len() int {
	return len(bouquets)
}

// At returns the entry at catalog position idx.
func At(idx int) (Bouquet, bool) {
	if idx < 0 || idx >= len(bouquets) {
		return Bouquet{}, false
	}
	return bouquets[idx], true
}

func ByID(id string) (Bouquet, bool) {
	idx := IndexOf(id)
	if idx < 0 {
		return Bouquet{}, false
	}
	return bouquets[idx], true
}

// IndexOf returns the catalog position of id, or -1.
func IndexOf(id string) int {
	trimmed := strings.TrimSpace(id)
	for idx, b := range bouquets {
		if b.ID == trimmed {
			return idx
		}
	}
	return -1
}

// Search matches query case-insensitively against name, description and meaning.
func Search(query string) []Bouquet {
	term := strings.ToLower(strings.TrimSpace(query))
	result := make([]Bouquet, 0)
	for _, b := range bouquets {
		if strings.Contains(strings.ToLower(b.Name), term) ||
			strings.Contains(strings.ToLower(b.Description), term) ||
			strings.Contains(strings.ToLower(b.Meaning), term) {
			result = append(result, b)
		}
	}
	return result
}
