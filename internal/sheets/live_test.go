package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/audreymhoughton/lead-lab/internal/domain"
)

func TestColLetter(t *testing.T) {
	for n, want := range map[int]string{
		1: "A", 2: "B", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 53: "BA",
	} {
		assert.Equal(t, want, colLetter(n), "column %d", n)
	}
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, columnIndex("Company"))
	assert.Equal(t, len(domain.Columns)-1, columnIndex("Key"))
	assert.Equal(t, -1, columnIndex("NoSuchColumn"))
}

func TestToStringsNilCellsBlank(t *testing.T) {
	got := toStrings([]any{"a", nil, 3})
	assert.Equal(t, []string{"a", "", "3"}, got)
}

func TestStatusAndCategoryDropdownValues(t *testing.T) {
	assert.Len(t, statusValues(), len(domain.Statuses()))
	assert.Len(t, categoryValues(), len(domain.Categories()))
	assert.Equal(t, "New", statusValues()[0].UserEnteredValue)
}
