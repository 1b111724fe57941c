package Controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Kicho/Models"
)

// ExportController produces the monthly progress workbook.
type ExportController struct {
	DB *gorm.DB
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

// ExportClients streams an xlsx with one sheet of client master data and
// one of per-month completion.
func (c *ExportController) ExportClients(ctx *fiber.Ctx) error {
	var clients []Models.Client
	if err := c.DB.Preload("Staff").Preload("MonthlyTasks").
		Where("inactive = ?", false).Order("id").Find(&clients).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve clients"})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Clients"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"No", "Name", "Fiscal Month", "Staff", "Method", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, client := range clients {
		values := []interface{}{
			client.ID, client.Name,
			fmt.Sprintf("%d月", client.FiscalMonth),
			client.Staff.Name, client.AccountingMethod, client.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if _, err := f.NewSheet("Monthly"); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build workbook"})
	}
	monthlyHeaders := []string{"Client No", "Client", "Month", "Done", "Total", "Status"}
	for i, h := range monthlyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Monthly", cell, h)
	}
	row := 2
	for _, client := range clients {
		for _, task := range client.MonthlyTasks {
			checks := task.Tasks.Data()
			done := 0
			for _, ok := range checks {
				if ok {
					done++
				}
			}
			values := []interface{}{
				client.ID, client.Name, task.Month, done, len(checks), task.Status,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue("Monthly", cell, v)
			}
			row++
		}
	}

	ctx.Set(fiber.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition,
		`attachment; filename="clients.xlsx"`)
	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write workbook"})
	}
	return nil
}
