package Tasks

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Kicho/Models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&Models.Staff{},
		&Models.Client{},
		&Models.MonthlyTask{},
		&Models.DefaultTaskTemplate{},
		&Models.EditingSession{},
	))
	return db
}

func seedClient(t *testing.T, db *gorm.DB, id uint, tasks Models.TasksByYear, finalized []string) *Models.Client {
	t.Helper()
	staff := Models.Staff{Name: "担当"}
	err := db.FirstOrCreate(&staff, Models.Staff{Name: "担当"}).Error
	require.NoError(t, err)

	if tasks == nil {
		tasks = Models.TasksByYear{}
	}
	if finalized == nil {
		finalized = []string{}
	}
	client := Models.Client{
		ID:                id,
		Name:              "テスト会社",
		FiscalMonth:       3,
		StaffID:           staff.ID,
		AccountingMethod:  Models.MethodAgency,
		Status:            "未着手",
		CustomTasksByYear: datatypes.NewJSONType(tasks),
		FinalizedYears:    datatypes.NewJSONType(finalized),
	}
	require.NoError(t, db.Create(&client).Error)
	return &client
}

func seedMonthly(t *testing.T, db *gorm.DB, clientID uint, month string, checks Models.TaskChecks) *Models.MonthlyTask {
	t.Helper()
	record := Models.MonthlyTask{
		ClientID: clientID,
		Month:    month,
		Tasks:    datatypes.NewJSONType(checks),
		Status:   "未入力",
	}
	require.NoError(t, db.Create(&record).Error)
	return &record
}

func storedTasks(t *testing.T, db *gorm.DB, clientID uint) Models.TasksByYear {
	t.Helper()
	var client Models.Client
	require.NoError(t, db.First(&client, clientID).Error)
	return client.TaskYears()
}
