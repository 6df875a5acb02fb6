package nav

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidItem wraps every item validation failure.
var ErrInvalidItem = errors.New("invalid nav item")

// Item is one static sidebar entry. A branch has children and opens a flyout;
// a leaf has an href and navigates.
type Item struct {
	Label    string
	Icon     string
	Href     string
	Children []Item
}

// IsBranch reports whether the item opens a flyout.
func (it Item) IsBranch() bool { return len(it.Children) > 0 }

func validateItems(items []Item, depth int) error {
	for i, it := range items {
		hasHref := strings.TrimSpace(it.Href) != ""
		switch {
		case it.IsBranch() && hasHref:
			return fmt.Errorf("%w: %q has both children and href", ErrInvalidItem, it.Label)
		case !it.IsBranch() && !hasHref:
			return fmt.Errorf("%w: %q has neither children nor href", ErrInvalidItem, it.Label)
		case it.IsBranch() && depth > 0:
			// Flyouts are one level deep.
			return fmt.Errorf("%w: flyout entry %q (index %d) cannot have children", ErrInvalidItem, it.Label, i)
		}
		if it.IsBranch() {
			if err := validateItems(it.Children, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
