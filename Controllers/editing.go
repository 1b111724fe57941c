package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Kicho/Models"
	"Kicho/Presence"
)

// EditingController exposes the advisory editing-session protocol. A
// HELD_BY answer is informational only: saving is still allowed, the
// record lock is what serializes the actual writes.
type EditingController struct {
	DB      *gorm.DB
	Tracker *Presence.Tracker
}

func NewEditingController(db *gorm.DB) *EditingController {
	return &EditingController{DB: db, Tracker: Presence.NewTracker(db)}
}

type EditingInput struct {
	EditorID string `json:"editor_id" validate:"required"`
}

// clientID parses and verifies the client id parameter. When ok is false
// the error response has already been written.
func (c *EditingController) clientID(ctx *fiber.Ctx) (uint, bool) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id < 0 {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
		return 0, false
	}
	var client Models.Client
	if result := c.DB.First(&client, id); result.Error != nil {
		ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		return 0, false
	}
	return uint(id), true
}

func (c *EditingController) parseEditor(ctx *fiber.Ctx) (string, bool) {
	var input EditingInput
	if err := ctx.BodyParser(&input); err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		return "", false
	}
	if err := validate.Struct(&input); err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessages(err),
		})
		return "", false
	}
	return input.EditorID, true
}

// StartEditing registers edit-intent. 200 when allowed, 409 with the
// holder's identity when another editor has a live session.
func (c *EditingController) StartEditing(ctx *fiber.Ctx) error {
	clientID, ok := c.clientID(ctx)
	if !ok {
		return nil
	}
	editorID, ok := c.parseEditor(ctx)
	if !ok {
		return nil
	}

	decision, err := c.Tracker.AcquireOrReport(clientID, editorID, time.Now())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to start editing session",
			"message": err.Error(),
		})
	}
	if !decision.Allowed {
		return ctx.Status(fiber.StatusConflict).JSON(decision)
	}
	return ctx.JSON(decision)
}

// TouchEditing refreshes an existing session's activity.
func (c *EditingController) TouchEditing(ctx *fiber.Ctx) error {
	clientID, ok := c.clientID(ctx)
	if !ok {
		return nil
	}
	editorID, ok := c.parseEditor(ctx)
	if !ok {
		return nil
	}

	if err := c.Tracker.Touch(clientID, editorID, time.Now()); err != nil {
		if err == Presence.ErrSessionNotFound {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Editing session not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to refresh editing session",
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{"message": "OK"})
}

// EndEditing releases the editor's own session. Idempotent.
func (c *EditingController) EndEditing(ctx *fiber.Ctx) error {
	clientID, ok := c.clientID(ctx)
	if !ok {
		return nil
	}
	editorID, ok := c.parseEditor(ctx)
	if !ok {
		return nil
	}

	if err := c.Tracker.Release(clientID, editorID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to end editing session",
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{"message": "OK"})
}

// EditingStatus reports whether a live session exists.
func (c *EditingController) EditingStatus(ctx *fiber.Ctx) error {
	clientID, ok := c.clientID(ctx)
	if !ok {
		return nil
	}

	status, err := c.Tracker.Status(clientID, time.Now())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to read editing status",
			"message": err.Error(),
		})
	}
	return ctx.JSON(status)
}

// ForceUnlock removes every session for the client. Admin only.
func (c *EditingController) ForceUnlock(ctx *fiber.Ctx) error {
	clientID, ok := c.clientID(ctx)
	if !ok {
		return nil
	}

	removed, err := c.Tracker.ForceRelease(clientID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to force unlock",
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{"sessions_removed": removed})
}
