package Controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Models"
	"Kicho/Tasks"
)

// ClientController handles client CRUD plus the locked update path.
type ClientController struct {
	DB          *gorm.DB
	Coordinator *Tasks.Coordinator
}

func NewClientController(db *gorm.DB, locks *Locks.RecordLock) *ClientController {
	return &ClientController{
		DB:          db,
		Coordinator: Tasks.NewCoordinator(db, locks),
	}
}

type CreateClientInput struct {
	ID               uint   `json:"id" validate:"required"`
	Name             string `json:"name" validate:"required"`
	FiscalMonth      int    `json:"fiscal_month" validate:"required,min=1,max=12"`
	StaffID          uint   `json:"staff_id" validate:"required"`
	AccountingMethod string `json:"accounting_method" validate:"required,oneof=AGENCY SELF"`
	Status           string `json:"status"`
}

// GetClients lists active clients ordered by id with staff attached.
func (c *ClientController) GetClients(ctx *fiber.Ctx) error {
	var clients []Models.Client
	result := c.DB.Preload("Staff").Where("inactive = ?", false).
		Order("id").Find(&clients)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve clients"})
	}
	return ctx.JSON(clients)
}

// GetClient returns the full client view: fields, templates, finalized
// years and every monthly record.
func (c *ClientController) GetClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	result := c.DB.Preload("Staff").Preload("MonthlyTasks").First(&client, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}
	return ctx.JSON(client)
}

// CreateClient creates a client with a caller-assigned id and seeds the
// current fiscal year's template from the method's default task list.
func (c *ClientController) CreateClient(ctx *fiber.Ctx) error {
	var input CreateClientInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	var existing Models.Client
	if err := c.DB.First(&existing, input.ID).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Client ID already in use"})
	}

	var staff Models.Staff
	if err := c.DB.First(&staff, input.StaffID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Staff not found"})
	}

	tasks := []string{}
	var tpl Models.DefaultTaskTemplate
	if err := c.DB.First(&tpl, "method = ?", input.AccountingMethod).Error; err == nil {
		tasks = append(tasks, tpl.Tasks.Data()...)
	}

	year := strconv.Itoa(time.Now().Year())
	client := Models.Client{
		ID:                input.ID,
		Name:              input.Name,
		FiscalMonth:       input.FiscalMonth,
		StaffID:           input.StaffID,
		AccountingMethod:  input.AccountingMethod,
		Status:            input.Status,
		CustomTasksByYear: datatypes.NewJSONType(Models.TasksByYear{year: tasks}),
		FinalizedYears:    datatypes.NewJSONType([]string{}),
	}
	if err := c.DB.Create(&client).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to create client",
			"message": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(client)
}

// UpdateClient applies a partial update under the record lock and returns
// the authoritative post-update view.
func (c *ClientController) UpdateClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var patch Tasks.ClientPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&patch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	client, err := c.Coordinator.Update(uint(id), &patch)
	if err != nil {
		switch {
		case errors.Is(err, Tasks.ErrClientNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		case errors.Is(err, Tasks.ErrTaskNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Monthly task not found"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to update client",
				"message": err.Error(),
			})
		}
	}
	return ctx.JSON(client)
}

// DeleteClient marks the client inactive. The record and its monthly tasks
// stay restorable.
func (c *ClientController) DeleteClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	if result := c.DB.First(&client, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	if err := c.DB.Model(&client).Update("inactive", true).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete client"})
	}
	return ctx.JSON(fiber.Map{"message": "Client deleted successfully"})
}

// RestoreClient clears the inactive flag.
func (c *ClientController) RestoreClient(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	if result := c.DB.First(&client, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	if err := c.DB.Model(&client).Update("inactive", false).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to restore client"})
	}
	return ctx.JSON(fiber.Map{"message": "Client restored successfully"})
}
