package bundle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironndt/certify/internal/models"
)

func TestPlanPaginationAssignsRunningStartPages(t *testing.T) {
	items := []models.CertificationItem{
		{ID: "a", SortOrder: 0, PagesCount: 3},
		{ID: "b", SortOrder: 1, PagesCount: 1},
		{ID: "c", SortOrder: 2, PagesCount: 2},
	}

	plan := PlanPagination(items)

	require.Len(t, plan.Items, 3)
	assert.Equal(t, 1, plan.IndexPages)
	assert.Equal(t, 2, plan.BodyStartPage)
	assert.Equal(t, 2, plan.Items[0].StartsAtPage)
	assert.Equal(t, 5, plan.Items[1].StartsAtPage)
	assert.Equal(t, 6, plan.Items[2].StartsAtPage)
	assert.Equal(t, 7, plan.TotalPages)
}

func TestPlanPaginationOrdersBySortOrder(t *testing.T) {
	items := []models.CertificationItem{
		{ID: "last", SortOrder: 5, PagesCount: 1},
		{ID: "first", SortOrder: 1, PagesCount: 1},
		{ID: "mid", SortOrder: 3, PagesCount: 1},
	}

	plan := PlanPagination(items)

	assert.Equal(t, "first", plan.Items[0].ID)
	assert.Equal(t, "mid", plan.Items[1].ID)
	assert.Equal(t, "last", plan.Items[2].ID)
}

func TestPlanPaginationStableOnEqualSortOrder(t *testing.T) {
	items := []models.CertificationItem{
		{ID: "a", SortOrder: 1},
		{ID: "b", SortOrder: 1},
		{ID: "c", SortOrder: 1},
	}

	plan := PlanPagination(items)

	assert.Equal(t, "a", plan.Items[0].ID)
	assert.Equal(t, "b", plan.Items[1].ID)
	assert.Equal(t, "c", plan.Items[2].ID)
}

func TestPlanPaginationEmptyBundleStillHasIndexPage(t *testing.T) {
	plan := PlanPagination(nil)

	assert.Equal(t, 1, plan.IndexPages)
	assert.Equal(t, 2, plan.BodyStartPage)
	assert.Equal(t, 1, plan.TotalPages)
	assert.Empty(t, plan.Items)
}

func TestPlanPaginationDefaultsUnknownPageCountToOne(t *testing.T) {
	items := []models.CertificationItem{
		{ID: "a", SortOrder: 0, PagesCount: 0},
		{ID: "b", SortOrder: 1, PagesCount: 2},
	}

	plan := PlanPagination(items)

	assert.Equal(t, 1, plan.Items[0].PagesCount)
	assert.Equal(t, 2, plan.Items[0].StartsAtPage)
	assert.Equal(t, 3, plan.Items[1].StartsAtPage)
}

func TestPlanPaginationIndexOverflowsToSecondPage(t *testing.T) {
	items := make([]models.CertificationItem, rowsPerIndexPage+1)
	for i := range items {
		items[i] = models.CertificationItem{ID: fmt.Sprintf("r%d", i), SortOrder: i, PagesCount: 1}
	}

	plan := PlanPagination(items)

	assert.Equal(t, 2, plan.IndexPages)
	assert.Equal(t, 3, plan.BodyStartPage)
	assert.Equal(t, 3, plan.Items[0].StartsAtPage)
}

func TestPlanPaginationDoesNotMutateInput(t *testing.T) {
	items := []models.CertificationItem{
		{ID: "b", SortOrder: 2},
		{ID: "a", SortOrder: 1},
	}

	_ = PlanPagination(items)

	assert.Equal(t, "b", items[0].ID)
	assert.Zero(t, items[0].StartsAtPage)
}

func TestIndexLabelFormat(t *testing.T) {
	item := models.CertificationItem{PartCode: "BOP-114", ReportNumber: "INF-0042"}
	assert.Equal(t, "01  BOP-114  ·  INF-0042", indexLabel(0, item))

	blank := models.CertificationItem{}
	assert.Equal(t, "10  —  ·  —", indexLabel(9, blank))
}
