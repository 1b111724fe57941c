package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Tasks"
)

// TaskController exposes the year-scoped template operations: direct year
// edits, propagation to future years, sync-check and pruning.
type TaskController struct {
	DB         *gorm.DB
	Store      *Tasks.TemplateStore
	Propagator *Tasks.Propagator
	Reconciler *Tasks.Reconciler
	Pruner     *Tasks.Pruner
}

func NewTaskController(db *gorm.DB, locks *Locks.RecordLock) *TaskController {
	return &TaskController{
		DB:         db,
		Store:      Tasks.NewTemplateStore(db, locks),
		Propagator: Tasks.NewPropagator(db, locks),
		Reconciler: Tasks.NewReconciler(db),
		Pruner:     Tasks.NewPruner(db, locks),
	}
}

type SetYearTasksInput struct {
	TaskNames []string `json:"task_names" validate:"required"`
}

type SyncCheckInput struct {
	TasksByYear map[string][]string `json:"tasks_by_year"`
}

type PropagateInput struct {
	SourceYear  string   `json:"source_year" validate:"required"`
	TargetYears []string `json:"target_years"`
}

type PruneInput struct {
	Year             string   `json:"year"`
	DeletedTaskNames []string `json:"deleted_task_names" validate:"required,min=1"`
}

func taskError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Tasks.ErrClientNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	case errors.Is(err, Tasks.ErrTemplateNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No task template for source year"})
	case errors.Is(err, Tasks.ErrYearFinalized):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Year is finalized"})
	case errors.Is(err, Tasks.ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Database error",
			"message": err.Error(),
		})
	}
}

// SetYearTasks replaces one year's task list. Finalized years are refused
// here at the boundary; the store itself stays advisory.
func (c *TaskController) SetYearTasks(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}
	year := ctx.Params("year")

	var input SetYearTasksInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	_, finalized, err := c.Store.Years(uint(id))
	if err != nil {
		return taskError(ctx, err)
	}
	for _, y := range finalized {
		if y == year {
			return taskError(ctx, Tasks.ErrYearFinalized)
		}
	}

	if err := c.Store.SetYear(uint(id), year, input.TaskNames); err != nil {
		return taskError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"year": year, "task_names": input.TaskNames})
}

// SyncCheck reports drift between the caller's cached templates and the
// stored ones without touching either side.
func (c *TaskController) SyncCheck(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var input SyncCheckInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := c.Reconciler.Diff(uint(id), input.TasksByYear)
	if err != nil {
		return taskError(ctx, err)
	}
	return ctx.JSON(result)
}

// PropagateTasks copies the source year's template to future non-finalized
// years.
func (c *TaskController) PropagateTasks(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var input PropagateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	result, err := c.Propagator.Propagate(uint(id), input.SourceYear, input.TargetYears)
	if err != nil {
		return taskError(ctx, err)
	}
	return ctx.JSON(result)
}

// PruneDeletedTasks removes deleted task names from the client's monthly
// records.
func (c *TaskController) PruneDeletedTasks(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var input PruneInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
	}

	result, err := c.Pruner.Prune(uint(id), input.Year, input.DeletedTaskNames)
	if err != nil {
		return taskError(ctx, err)
	}
	return ctx.JSON(result)
}
