package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Models"
)

// DefaultTemplateController administers the task list seeded to new
// clients per accounting method.
type DefaultTemplateController struct {
	DB *gorm.DB
}

func NewDefaultTemplateController(db *gorm.DB) *DefaultTemplateController {
	return &DefaultTemplateController{DB: db}
}

type DefaultTemplateInput struct {
	Tasks []string `json:"tasks" validate:"required,min=1"`
}

func validMethod(method string) bool {
	return method == Models.MethodAgency || method == Models.MethodSelf
}

func (c *DefaultTemplateController) GetTemplate(ctx *fiber.Ctx) error {
	method := ctx.Params("method")
	if !validMethod(method) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid accounting method"})
	}

	var tpl Models.DefaultTaskTemplate
	if err := c.DB.First(&tpl, "method = ?", method).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	return ctx.JSON(tpl)
}

func (c *DefaultTemplateController) SetTemplate(ctx *fiber.Ctx) error {
	method := ctx.Params("method")
	if !validMethod(method) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid accounting method"})
	}

	var input DefaultTemplateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	tpl := Models.DefaultTaskTemplate{
		Method: method,
		Tasks:  datatypes.NewJSONType(input.Tasks),
	}
	if err := c.DB.Save(&tpl).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save template"})
	}
	return ctx.JSON(tpl)
}
