package Models

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// DefaultTasks is the task list seeded for both accounting methods on a
// fresh database. Taken from the office's standard monthly checklist.
var DefaultTasks = []string{
	"受付", "入力", "会計チェック", "担当者解決", "不明点",
	"試算表作成", "代表報告", "仕分け確認", "先生ロック",
}

func Connect() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	// 1. Base tables with no dependencies
	DB.AutoMigrate(
		&User{},
		&Staff{},
		&DefaultTaskTemplate{},
	)

	// 2. Tables with foreign keys
	DB.AutoMigrate(
		&Client{},      // Depends on Staff
		&MonthlyTask{}, // Depends on Client, cascade delete
		&EditingSession{},
	)
}

// SeedDefaults populates the default task templates and, on an empty
// database, the initial staff and sample clients.
func SeedDefaults() {
	for _, method := range []string{MethodAgency, MethodSelf} {
		var tpl DefaultTaskTemplate
		if err := DB.First(&tpl, "method = ?", method).Error; err == gorm.ErrRecordNotFound {
			tpl = DefaultTaskTemplate{
				Method: method,
				Tasks:  datatypes.NewJSONType(append([]string{}, DefaultTasks...)),
			}
			if err := DB.Create(&tpl).Error; err != nil {
				log.Println("Failed to seed default template:", err)
			}
		}
	}

	var clientCount int64
	DB.Model(&Client{}).Count(&clientCount)
	if clientCount > 0 {
		return
	}

	staffNames := []string{"佐藤", "鈴木", "高橋", "田中", "渡辺"}
	staffMap := make(map[string]uint)
	for _, name := range staffNames {
		staff := Staff{Name: name}
		if err := DB.Create(&staff).Error; err != nil {
			log.Println("Failed to seed staff:", err)
			continue
		}
		staffMap[name] = staff.ID
	}

	year := strconv.Itoa(time.Now().Year())
	seedClients := []struct {
		ID     uint
		Name   string
		Month  int
		Staff  string
		Method string
		Status string
	}{
		{101, "株式会社アルファ", 1, "佐藤", MethodAgency, "完了"},
		{103, "合同会社ベータ", 1, "鈴木", MethodSelf, "完了"},
		{201, "株式会社ガンマ", 2, "高橋", MethodSelf, "完了"},
		{301, "有限会社デルタ", 3, "田中", MethodAgency, "2チェック待ち"},
		{308, "株式会社イプシロン", 3, "渡辺", MethodAgency, "依頼中"},
	}
	for _, c := range seedClients {
		client := Client{
			ID:               c.ID,
			Name:             c.Name,
			FiscalMonth:      c.Month,
			StaffID:          staffMap[c.Staff],
			AccountingMethod: c.Method,
			Status:           c.Status,
			CustomTasksByYear: datatypes.NewJSONType(TasksByYear{
				year: append([]string{}, DefaultTasks...),
			}),
			FinalizedYears: datatypes.NewJSONType([]string{}),
		}
		if err := DB.Create(&client).Error; err != nil {
			log.Println("Failed to seed client:", err)
		}
	}

	done := TaskChecks{}
	open := TaskChecks{}
	for _, name := range DefaultTasks {
		done[name] = true
		open[name] = false
	}
	seedMonths := []MonthlyTask{
		{ClientID: 101, Month: "2025年7月", Tasks: datatypes.NewJSONType(done), Status: "月次完了"},
		{ClientID: 101, Month: "2025年8月", Tasks: datatypes.NewJSONType(done), Status: "月次完了"},
		{ClientID: 103, Month: "2025年7月", Tasks: datatypes.NewJSONType(open), Status: "未入力"},
	}
	for i := range seedMonths {
		if err := DB.Create(&seedMonths[i]).Error; err != nil {
			log.Println("Failed to seed monthly task:", err)
		}
	}

	log.Println("Database seeded with initial data")
}
