package domain

import (
	"fmt"
	"strings"
)

type ChecklistItem struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

type ChecklistSubCategory struct {
	Title string          `yaml:"title" json:"title"`
	Items []ChecklistItem `yaml:"items" json:"items"`
}

type ChecklistCategory struct {
	ID            string                 `yaml:"id" json:"id"`
	Title         string                 `yaml:"title" json:"title"`
	SubCategories []ChecklistSubCategory `yaml:"subcategories" json:"subCategories"`
}

// ItemRef locates an item inside the catalog. Number is the 1-based
// position within its subcategory.
type ItemRef struct {
	Item             ChecklistItem
	CategoryID       string
	CategoryTitle    string
	SubCategoryTitle string
	Number           int
}

// Catalog is immutable once built and safe for concurrent reads.
type Catalog struct {
	categories []ChecklistCategory
	index      map[string]ItemRef
	order      []string
}

func NewCatalog(categories []ChecklistCategory) (*Catalog, error) {
	c := &Catalog{
		categories: categories,
		index:      make(map[string]ItemRef),
	}
	seenCategories := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		if strings.TrimSpace(cat.ID) == "" {
			return nil, fmt.Errorf("%w: category %q has empty id", ErrInvalidInput, cat.Title)
		}
		if _, dup := seenCategories[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %q", ErrInvalidInput, cat.ID)
		}
		seenCategories[cat.ID] = struct{}{}
		for _, sub := range cat.SubCategories {
			for i, item := range sub.Items {
				if strings.TrimSpace(item.ID) == "" {
					return nil, fmt.Errorf("%w: empty item id in category %q", ErrInvalidInput, cat.ID)
				}
				if existing, dup := c.index[item.ID]; dup {
					return nil, fmt.Errorf("%w: item id %q appears in %q and %q", ErrInvalidInput, item.ID, existing.CategoryID, cat.ID)
				}
				c.index[item.ID] = ItemRef{
					Item:             item,
					CategoryID:       cat.ID,
					CategoryTitle:    cat.Title,
					SubCategoryTitle: sub.Title,
					Number:           i + 1,
				}
				c.order = append(c.order, item.ID)
			}
		}
	}
	return c, nil
}

func (c *Catalog) Categories() []ChecklistCategory { return c.categories }

func (c *Catalog) Lookup(itemID string) (ItemRef, bool) {
	ref, ok := c.index[itemID]
	return ref, ok
}

// ItemIDs returns item ids in display order.
func (c *Catalog) ItemIDs() []string { return append([]string(nil), c.order...) }

func (c *Catalog) ItemCount() int { return len(c.order) }

// ValidateCoverage checks that results hold exactly one entry per catalog item.
func (c *Catalog) ValidateCoverage(results []InspectionItemResult) error {
	seen := make(map[string]int, len(results))
	var unknown, duplicate []string
	for _, r := range results {
		if _, ok := c.index[r.ItemID]; !ok {
			unknown = append(unknown, r.ItemID)
			continue
		}
		seen[r.ItemID]++
		if seen[r.ItemID] == 2 {
			duplicate = append(duplicate, r.ItemID)
		}
	}
	var missing []string
	for _, id := range c.order {
		if seen[id] == 0 {
			missing = append(missing, id)
		}
	}

	var violations []Violation
	if len(unknown) > 0 {
		violations = append(violations, Violation{
			Code:    ViolationUnknownItem,
			Message: fmt.Sprintf("%d item(s) not in catalog", len(unknown)),
			ItemIDs: unknown,
		})
	}
	if len(duplicate) > 0 {
		violations = append(violations, Violation{
			Code:    ViolationDuplicateItem,
			Message: fmt.Sprintf("%d item(s) repeated", len(duplicate)),
			ItemIDs: duplicate,
		})
	}
	if len(missing) > 0 {
		violations = append(violations, Violation{
			Code:    ViolationMissingCatalogItem,
			Message: fmt.Sprintf("%d catalog item(s) without result", len(missing)),
			ItemIDs: missing,
		})
	}
	return validationFailure(violations)
}
