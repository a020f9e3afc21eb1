package domain

import "time"

type MenuCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuVariant is a named variation of a menu item, e.g. "Double" with a
// price modifier added on top of the base price.
type MenuVariant struct {
	Name          string  `json:"name"`
	PriceModifier float64 `json:"price_modifier"`
}

type MenuItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	CategoryID  string        `json:"category_id"`
	Emoji       string        `json:"emoji"`
	Variants    []MenuVariant `json:"variants"`
	Available   bool          `json:"available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
