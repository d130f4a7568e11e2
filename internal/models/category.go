package models

import "time"

// Category is a bare functional unit; it exists only to be named.
type Category struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CategoryName carries the display name for a category. The split from
// Category is historical; every category has exactly one name row before use.
// The name doubles as the staff department identifier.
type CategoryName struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
}

// CategoryView is the {id, name} pair exposed by the registry listing. ID is
// the category id (the foreign-key join target), not the name row id.
type CategoryView struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
