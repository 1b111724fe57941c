package FiberConfig

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"Kicho/Controllers"
	"Kicho/Locks"
	"Kicho/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, locks *Locks.RecordLock) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	staffController := Controllers.NewStaffController(db)
	clientController := Controllers.NewClientController(db, locks)
	editingController := Controllers.NewEditingController(db)
	taskController := Controllers.NewTaskController(db, locks)
	defaultsController := Controllers.NewDefaultTemplateController(db)
	exportController := Controllers.NewExportController(db)

	// API group
	api := app.Group("/api")

	// Auth routes
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Get("/user", middleware.Verify(0), authController.CurrentUser)

	// Staff routes
	staffs := api.Group("/staffs", middleware.Verify(1))
	staffs.Get("/", staffController.GetStaffs)
	staffs.Post("/", middleware.Verify(3), staffController.CreateStaff)
	staffs.Put("/:id", middleware.Verify(3), staffController.UpdateStaff)
	staffs.Delete("/:id", middleware.Verify(3), staffController.DeleteStaff)

	// Client routes
	clients := api.Group("/clients", middleware.Verify(1))
	clients.Get("/", clientController.GetClients)
	clients.Post("/", middleware.Verify(2), clientController.CreateClient)
	clients.Get("/:id", clientController.GetClient)
	clients.Put("/:id", middleware.Verify(2), clientController.UpdateClient)
	clients.Delete("/:id", middleware.Verify(3), clientController.DeleteClient)
	clients.Post("/:id/restore", middleware.Verify(3), clientController.RestoreClient)

	// Editing session routes (advisory presence)
	clients.Get("/:id/editing", editingController.EditingStatus)
	clients.Post("/:id/editing/start", middleware.Verify(2), editingController.StartEditing)
	clients.Post("/:id/editing/touch", middleware.Verify(2), editingController.TouchEditing)
	clients.Post("/:id/editing/end", middleware.Verify(2), editingController.EndEditing)
	clients.Post("/:id/editing/force-unlock", middleware.Verify(3), editingController.ForceUnlock)

	// Year-scoped task template routes
	clients.Put("/:id/tasks/:year", middleware.Verify(2), taskController.SetYearTasks)
	clients.Post("/:id/tasks/sync-check", taskController.SyncCheck)
	clients.Post("/:id/tasks/propagate", middleware.Verify(2), taskController.PropagateTasks)
	clients.Post("/:id/tasks/prune", middleware.Verify(2), taskController.PruneDeletedTasks)

	// Default template administration
	defaults := api.Group("/default-tasks", middleware.Verify(3))
	defaults.Get("/:method", defaultsController.GetTemplate)
	defaults.Put("/:method", defaultsController.SetTemplate)

	// Reports
	api.Get("/export/clients", middleware.Verify(1), exportController.ExportClients)
}

func FiberConfig(db *gorm.DB, locks *Locks.RecordLock) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, db, locks)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5000"
	}
	if err := app.Listen(addr); err != nil {
		panic(err)
	}
}
