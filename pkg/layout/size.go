package layout

import "github.com/matzehuels/tablescape/pkg/graph"

// Table size estimation constants.
const (
	minTableWidth    = 200.0
	tableBaseWidth   = 150.0
	widthPerColumn   = 30.0
	minWidthColumns  = 3
	headerHeight     = 40.0
	rowHeight        = 25.0
	tablePadding     = 20.0
	minHeightColumns = 1
)

// EstimateWidth returns the width of a table with the given column count
// when the editor has not measured it.
func EstimateWidth(columns int) float64 {
	return max(minTableWidth, tableBaseWidth+widthPerColumn*float64(max(minWidthColumns, columns)))
}

// EstimateHeight returns the height of a table with the given column count.
func EstimateHeight(columns int) float64 {
	return headerHeight + rowHeight*float64(max(minHeightColumns, columns)) + tablePadding
}

// NodeSize returns the explicit size of n, falling back to the estimate from
// its column count.
func NodeSize(n graph.Node) (w, h float64) {
	cols := len(n.Data.Columns)
	return n.SizeOr(EstimateWidth(cols), EstimateHeight(cols))
}
