package domain

import "time"

// TryTagName is the reserved tag marking recipes the user still wants to try.
// Recipes carrying it are kept out of the main list.
const TryTagName = "Ausprobieren"

// Tag is a label shared by any number of recipes. Names are not unique in
// storage; writers look an existing tag up by exact name before creating one.
type Tag struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	RecipeCount int       `json:"recipe_count,omitempty"` // Filled by tag listings only
}

// IsReserved reports whether the tag is the try-list marker.
func (t Tag) IsReserved() bool {
	return t.Name == TryTagName
}
