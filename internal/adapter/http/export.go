package http

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	exportName  = "consumption_data"
	exportSheet = "Consumption"

	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func writeExport(c *gin.Context, format string, rows []domain.DailyConsumption) error {
	if format == formatXLSX {
		return writeXLSX(c, rows)
	}
	return writeCSV(c, rows)
}

func writeCSV(c *gin.Context, rows []domain.DailyConsumption) error {
	c.Header("Content-Disposition", "attachment;filename="+exportName+".csv")
	c.Header("Content-Type", mimeCSV)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(domain.DailyConsumptionHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(c *gin.Context, rows []domain.DailyConsumption) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	for i, name := range domain.DailyConsumptionHeader {
		if err := setCell(f, i+1, 1, name); err != nil {
			return err
		}
	}
	for r, row := range rows {
		line := r + 2
		if err := setCell(f, 1, line, row.Day); err != nil {
			return err
		}
		for i, v := range row.Values() {
			if v == nil {
				continue
			}
			if err := setCell(f, i+2, line, v.InexactFloat64()); err != nil {
				return err
			}
		}
	}

	c.Header("Content-Disposition", "attachment;filename="+exportName+".xlsx")
	c.Header("Content-Type", mimeXLSX)
	c.Status(http.StatusOK)
	return f.Write(c.Writer)
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell %d,%d: %w", col, row, err)
	}
	return f.SetCellValue(exportSheet, cell, v)
}
