package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the filtered pledge list as CSV or XLSX. It honors
// the same filters as the pledge list endpoint.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var pledgeExportHeader = []string{
	"ID", "Contact", "Email", "Category", "Pledge Date", "Description",
	"Amount", "Currency", "Amount (USD)", "Paid (USD)", "Balance (USD)", "Active",
}

func (h *ExportHandler) fetchRows(c *gin.Context) ([]pledgeRow, error) {
	f, err := parsePledgeFilters(c)
	if err != nil {
		return nil, err
	}

	var rows []pledgeRow
	err = pledgeBase(h.DB, f).
		Order("pledges.pledge_date DESC, pledges.id DESC").
		Find(&rows).Error
	return rows, err
}

func pledgeExportRecord(r *pledgeRow) []string {
	category := ""
	if r.CategoryName != nil {
		category = *r.CategoryName
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.ContactName,
		r.ContactEmail,
		category,
		r.PledgeDate.Format("2006-01-02"),
		r.Description,
		r.OriginalAmount.StringFixed(2),
		r.Currency,
		r.OriginalAmountUSD.StringFixed(2),
		r.TotalPaidUSD.StringFixed(2),
		r.BalanceUSD.StringFixed(2),
		strconv.FormatBool(r.Active),
	}
}

// ExportPledgesCSV exports the filtered pledge list as CSV.
func (h *ExportHandler) ExportPledgesCSV(c *gin.Context) {
	rows, err := h.fetchRows(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"pledges_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(pledgeExportHeader)
	for i := range rows {
		writer.Write(pledgeExportRecord(&rows[i]))
	}
}

// ExportPledgesXLSX exports the filtered pledge list as a spreadsheet.
func (h *ExportHandler) ExportPledgesXLSX(c *gin.Context) {
	rows, err := h.fetchRows(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Pledges"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Internal, "create sheet", err))
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, head := range pledgeExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, head)
	}
	for idx := range rows {
		record := pledgeExportRecord(&rows[idx])
		for col, v := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	f.SetColWidth(sheetName, "B", "C", 24)
	f.SetColWidth(sheetName, "F", "F", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"pledges_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Internal, "write workbook", err))
	}
}
