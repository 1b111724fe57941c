package middleware

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"Kicho/Models"
)

// LogData contains the information written per request
type LogData struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
	IP        string        `json:"ip"`
	UserID    interface{}   `json:"user_id,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RequestLogger logs every request as a JSON line to logs/requests.log and
// a short line to the console.
func RequestLogger() fiber.Handler {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
	}
	logFile, err := os.OpenFile("logs/requests.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening request log file: %v\n", err)
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			Latency:   time.Since(start),
			IP:        c.IP(),
		}
		if err != nil {
			data.Error = err.Error()
		}
		if user, ok := c.Locals("user").(Models.User); ok {
			data.UserID = user.ID
		}

		log.Printf("%s %s -> %d (%v)", data.Method, data.Path, data.Status, data.Latency)
		if logFile != nil {
			if line, jsonErr := json.Marshal(data); jsonErr == nil {
				logFile.Write(append(line, '\n'))
			}
		}
		return err
	}
}
