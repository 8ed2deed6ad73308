// Package bundle compiles a certification's reports into one paginated PDF:
// a cover, an index listing every item with its starting page, and the report
// bodies renumbered sequentially.
package bundle

import (
	"fmt"
	"sort"

	"github.com/ironndt/certify/internal/models"
)

// Index layout, in points. The row count per page falls out of the body band
// between the column header and the footer, not from a free-standing choice.
const (
	indexRowHeightPt  = 16
	indexBodyTopPt    = 120
	indexBodyBottomPt = 750

	rowsPerIndexPage = (indexBodyBottomPt - indexBodyTopPt) / indexRowHeightPt // 39
)

// PlannedItem is one bundle entry with its assigned page range.
type PlannedItem struct {
	models.CertificationItem
	IndexLabel string
}

// Plan is the computed pagination for one bundle.
type Plan struct {
	IndexPages    int
	BodyStartPage int
	TotalPages    int
	Items         []PlannedItem
}

// PlanPagination assigns starting pages to the bundle items. Items are
// ordered by sort_order (stable, so ties keep their fetch order), the index
// always occupies at least one page even when empty, and an item with no
// known page count is assumed to span one page.
func PlanPagination(items []models.CertificationItem) Plan {
	ordered := make([]models.CertificationItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	indexPages := (len(ordered) + rowsPerIndexPage - 1) / rowsPerIndexPage
	if indexPages < 1 {
		indexPages = 1
	}

	plan := Plan{
		IndexPages:    indexPages,
		BodyStartPage: 1 + indexPages,
		Items:         make([]PlannedItem, 0, len(ordered)),
	}

	cursor := plan.BodyStartPage
	for i, item := range ordered {
		if item.PagesCount < 1 {
			item.PagesCount = 1
		}
		item.StartsAtPage = cursor
		cursor += item.PagesCount
		plan.Items = append(plan.Items, PlannedItem{
			CertificationItem: item,
			IndexLabel:        indexLabel(i, item),
		})
	}
	plan.TotalPages = cursor - 1
	return plan
}

// indexLabel formats one index row: zero-padded position, part code and
// report number.
func indexLabel(pos int, item models.CertificationItem) string {
	code := item.PartCode
	if code == "" {
		code = models.Placeholder
	}
	num := item.ReportNumber
	if num == "" {
		num = models.Placeholder
	}
	return fmt.Sprintf("%02d  %s  ·  %s", pos+1, code, num)
}
