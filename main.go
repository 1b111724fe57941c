package main

import (
	"log"

	"github.com/joho/godotenv"

	"Kicho/CronJobs"
	"Kicho/FiberConfig"
	"Kicho/Locks"
	"Kicho/Models"
	"Kicho/Presence"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file, using environment as-is")
	}

	Models.Connect()
	Models.SeedDefaults()

	locks := Locks.NewRecordLock()

	sweeper := CronJobs.NewSessionSweeper(Presence.NewTracker(Models.DB))
	if err := sweeper.Start(); err != nil {
		log.Println("Failed to start session sweeper:", err)
	}
	defer sweeper.Stop()

	FiberConfig.FiberConfig(Models.DB, locks)
}
