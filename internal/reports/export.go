package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var stockHeadings = []string{"ArticleID", "ArticleName", "SizeCode", "Store", "Warehouse", "Held", "Available"}

func (r StockRow) cells() []string {
	return []string{
		r.ArticleID,
		r.ArticleName,
		r.SizeCode,
		strconv.Itoa(r.Store),
		strconv.Itoa(r.Warehouse),
		strconv.Itoa(r.Held),
		strconv.Itoa(r.Available),
	}
}

// WriteStockCSV streams the stock summary as CSV.
func WriteStockCSV(w io.Writer, rows []StockRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(stockHeadings); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := out.Write(row.cells()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteStockXLSX streams the stock summary as a spreadsheet.
func WriteStockXLSX(w io.Writer, rows []StockRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	for i, heading := range stockHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, heading); err != nil {
			return err
		}
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row.cells() {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
