package pages

import (
	"sort"

	"github.com/google/uuid"

	"notebase/app/internal/store"
)

// TreeNode is one node of the ordered page forest.
type TreeNode struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	Children []TreeNode `json:"children"`
}

// BuildTree assembles a flat set of pages into an ordered forest. Pages whose
// parent is nil or missing from the input become roots. Siblings are ordered
// by title, then by id for equal titles. The visited set guarantees
// termination when the data contains a parent cycle: nothing in the schema
// prevents one, so a page on a cycle is emitted at most once and a pure cycle
// is dropped entirely.
func BuildTree(pages []store.Page) []TreeNode {
	present := make(map[uuid.UUID]bool, len(pages))
	for _, page := range pages {
		present[page.ID] = true
	}

	children := make(map[uuid.UUID][]*store.Page)
	var roots []*store.Page
	for i := range pages {
		page := &pages[i]
		if page.ParentPageID == nil || !present[*page.ParentPageID] {
			roots = append(roots, page)
			continue
		}
		children[*page.ParentPageID] = append(children[*page.ParentPageID], page)
	}

	visited := make(map[uuid.UUID]bool, len(pages))

	var build func(page *store.Page) TreeNode
	build = func(page *store.Page) TreeNode {
		visited[page.ID] = true

		node := TreeNode{
			ID:       page.ID,
			Title:    page.Title,
			Children: []TreeNode{},
		}

		kids := children[page.ID]
		sortSiblings(kids)
		for _, kid := range kids {
			if visited[kid.ID] {
				continue
			}
			node.Children = append(node.Children, build(kid))
		}

		return node
	}

	sortSiblings(roots)
	forest := make([]TreeNode, 0, len(roots))
	for _, root := range roots {
		if visited[root.ID] {
			continue
		}
		forest = append(forest, build(root))
	}

	return forest
}

func sortSiblings(siblings []*store.Page) {
	sort.Slice(siblings, func(i, j int) bool {
		if siblings[i].Title != siblings[j].Title {
			return siblings[i].Title < siblings[j].Title
		}
		return siblings[i].ID.String() < siblings[j].ID.String()
	})
}
