package domain

// MenuItem is a navigation category as returned by /category-list
type MenuItem struct {
	MenuContentID int64      `json:"menu_content_id"`
	ContentType   string     `json:"content_type"`
	ContentID     int64      `json:"content_id"`
	MenuPosition  int        `json:"menu_position"`
	Label         string     `json:"menu_lavel"`
	LinkURL       *string    `json:"link_url"`
	Slug          string     `json:"slug"`
	ParentsID     int64      `json:"parents_id"`
	MenuID        int64      `json:"menu_id"`
	Status        int        `json:"status"`
	MenuName      string     `json:"menu_name"`
	MenuStyle     *string    `json:"menu_style"`
	Children      []MenuItem `json:"categorieslevelone,omitempty"`
}

// MenuLevel marks a node as a root or as a child of a root
type MenuLevel int

const (
	MenuRoot MenuLevel = iota
	MenuChild
)

// MenuNode is one node of the two-level navigation tree
type MenuNode struct {
	Level    MenuLevel  `json:"-"`
	ID       int64      `json:"id"`
	Label    string     `json:"label"`
	Slug     string     `json:"slug"`
	Position int        `json:"position"`
	Children []MenuNode `json:"children,omitempty"`
}

// BuildMenu builds the navigation tree in one pass over an adjacency map.
// Roots are the items never referenced as a child of another item, kept in
// input order. An item listed several times keeps the children of its last
// occurrence that declares any.
func BuildMenu(items []MenuItem) []MenuNode {
	children := make(map[int64][]MenuItem, len(items))
	isChild := make(map[int64]bool)
	for _, it := range items {
		if len(it.Children) > 0 {
			children[it.MenuContentID] = it.Children
		}
		for _, c := range it.Children {
			isChild[c.MenuContentID] = true
		}
	}

	seen := make(map[int64]bool, len(items))
	var roots []MenuNode
	for _, it := range items {
		if isChild[it.MenuContentID] || seen[it.MenuContentID] {
			continue
		}
		seen[it.MenuContentID] = true
		root := MenuNode{
			Level:    MenuRoot,
			ID:       it.MenuContentID,
			Label:    it.Label,
			Slug:     it.Slug,
			Position: it.MenuPosition,
		}
		for _, c := range children[it.MenuContentID] {
			root.Children = append(root.Children, MenuNode{
				Level:    MenuChild,
				ID:       c.MenuContentID,
				Label:    c.Label,
				Slug:     c.Slug,
				Position: c.MenuPosition,
			})
		}
		roots = append(roots, root)
	}
	return roots
}

// SidebarCategory is a sidebar category with its level-one children
type SidebarCategory struct {
	MenuContentID int64             `json:"menu_content_id"`
	Label         string            `json:"menu_lavel"`
	Slug          string            `json:"slug"`
	Children      []SidebarCategory `json:"categorieslevelone"`
}
