package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Kicho/Models"
)

// StaffController handles the staff roster.
type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

type StaffInput struct {
	Name string `json:"name" validate:"required"`
}

func (c *StaffController) GetStaffs(ctx *fiber.Ctx) error {
	var staffs []Models.Staff
	if result := c.DB.Order("id").Find(&staffs); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve staffs"})
	}
	return ctx.JSON(staffs)
}

func (c *StaffController) CreateStaff(ctx *fiber.Ctx) error {
	var input StaffInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	var existing Models.Staff
	if err := c.DB.First(&existing, "name = ?", input.Name).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Staff name already exists"})
	}

	staff := Models.Staff{Name: input.Name}
	if err := c.DB.Create(&staff).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create staff"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(staff)
}

func (c *StaffController) UpdateStaff(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid staff ID"})
	}

	var staff Models.Staff
	if result := c.DB.First(&staff, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Staff not found"})
	}

	var input StaffInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	if err := c.DB.Model(&staff).Update("name", input.Name).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update staff"})
	}
	return ctx.JSON(staff)
}

// DeleteStaff refuses while any client still references the staff member.
func (c *StaffController) DeleteStaff(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid staff ID"})
	}

	var staff Models.Staff
	if result := c.DB.First(&staff, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Staff not found"})
	}

	var clientCount int64
	c.DB.Model(&Models.Client{}).Where("staff_id = ?", id).Count(&clientCount)
	if clientCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Staff is assigned to clients and cannot be deleted",
		})
	}

	if err := c.DB.Delete(&staff).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete staff"})
	}
	return ctx.JSON(fiber.Map{"message": "Staff deleted successfully"})
}
