// Package tenant keeps every query inside one company.
package tenant

import "gorm.io/gorm"

// Scope restricts a query to rows owned by companyID.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// Department restricts rows carrying a user_id to the live members of one
// department of companyID.
func Department(companyID, department string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		members := db.Session(&gorm.Session{NewDB: true}).
			Table("employees").
			Select("id").
			Where("company_id = ? AND department = ? AND deleted_at IS NULL", companyID, department)
		return db.Where("user_id IN (?)", members)
	}
}
