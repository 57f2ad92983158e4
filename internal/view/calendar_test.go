package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allswell/internal/datekey"
	"allswell/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestBuildMonthGridAlignsFirstWeekday(t *testing.T) {
	// March 2024 starts on a Friday.
	grid := BuildMonthGrid(date(2024, 3, 1), date(2024, 3, 5), date(2024, 3, 5), nil)

	assert.Equal(t, 2024, grid.Year)
	assert.Equal(t, 3, grid.Month)
	assert.Equal(t, 5, grid.LeadingBlanks)
	require.Len(t, grid.Cells, 5+31)

	for i := 0; i < 5; i++ {
		assert.True(t, grid.Cells[i].Blank)
	}
	assert.Equal(t, 1, grid.Cells[5].Day)
	assert.Equal(t, datekey.Key("2024-03-01"), grid.Cells[5].DateKey)
	assert.Equal(t, 31, grid.Cells[len(grid.Cells)-1].Day)
}

func TestBuildMonthGridMarksTodayAndSelectedOnce(t *testing.T) {
	grid := BuildMonthGrid(date(2024, 3, 1), date(2024, 3, 10), date(2024, 3, 5), nil)

	var todays, selected []int
	for _, cell := range grid.Cells {
		if cell.Today {
			todays = append(todays, cell.Day)
		}
		if cell.Selected {
			selected = append(selected, cell.Day)
		}
	}
	assert.Equal(t, []int{5}, todays)
	assert.Equal(t, []int{10}, selected)
}

func TestBuildMonthGridOutsideMonthMarksNothing(t *testing.T) {
	// Viewing April while today and the selection sit in March.
	grid := BuildMonthGrid(date(2024, 4, 1), date(2024, 3, 10), date(2024, 3, 5), nil)

	for _, cell := range grid.Cells {
		assert.False(t, cell.Today)
		assert.False(t, cell.Selected)
	}
}

func TestBuildMonthGridRendersWithoutMetadata(t *testing.T) {
	grid := BuildMonthGrid(date(2024, 3, 1), date(2024, 3, 1), date(2024, 3, 1), nil)
	for _, cell := range grid.Cells {
		assert.Zero(t, cell.TaskCount)
		assert.Zero(t, cell.CompletedCount)
	}
}

func TestBuildMonthGridAppliesCounters(t *testing.T) {
	meta := map[datekey.Key]model.DayMetadata{
		"2024-03-05": {TaskCount: 3, CompletedCount: 2},
	}
	grid := BuildMonthGrid(date(2024, 3, 1), date(2024, 3, 1), date(2024, 3, 1), meta)

	cell := grid.Cells[grid.LeadingBlanks+4]
	require.Equal(t, 5, cell.Day)
	assert.Equal(t, 3, cell.TaskCount)
	assert.Equal(t, 2, cell.CompletedCount)
}
