package storage

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"

	"github.com/thedittmer/intel-hub/internal/models"
)

// ExportBookmarks writes bookmarks as an xlsx workbook with one sheet.
func ExportBookmarks(w io.Writer, bookmarks []models.Bookmark) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Bookmarks")
	if err != nil {
		return fmt.Errorf("unable to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range models.BookmarkHeader {
		header.AddCell().Value = h
	}

	for _, b := range bookmarks {
		row := sheet.AddRow()
		for _, cell := range b.Row() {
			row.AddCell().Value = cell
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("unable to write workbook: %w", err)
	}
	return nil
}
