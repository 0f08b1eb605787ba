package app

import (
	"strings"

	"hr-calendar/internal/employee"
	"hr-calendar/internal/event"
	"hr-calendar/internal/messaging/kafka"
	"hr-calendar/internal/shared/counter"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables the API writes to.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&employee.Employee{}, &event.Event{}, &counter.CompanyCounter{}); err != nil {
		return err
	}
	for _, stmt := range strings.Split(kafka.OutboxTableDDL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
