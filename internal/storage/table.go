package storage

import "context"

// Table is a minimal row store: the bookmark gateway only needs to read
// every row, append a row, find a row by cell value and delete a row by
// position. Row positions are zero based over the rows ReadAll returns.
type Table interface {
	ReadAll(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []string) error
	// FindRow returns the position of the first row whose cell at column
	// equals value, or -1.
	FindRow(ctx context.Context, column int, value string) (int, error)
	DeleteRow(ctx context.Context, position int) error
}

// findIn scans rows for the first row whose column cell equals value.
func findIn(rows [][]string, column int, value string) int {
	for i, row := range rows {
		if column < len(row) && row[column] == value {
			return i
		}
	}
	return -1
}
