package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index"`
	FullName   string
	Email      string     `gorm:"uniqueIndex:uq_employee_email"`
	Role       string     `gorm:"type:varchar(20);not null;default:'employee'"`
	Department string     `gorm:"type:varchar(100);index"`
	HireDate   *time.Time `gorm:"type:date"`

	RequireTwoStepLeaveApproval bool       `gorm:"not null;default:false"`
	FirstApproverID             *uuid.UUID `gorm:"type:uuid;index"`
	SecondApproverID            *uuid.UUID `gorm:"type:uuid;index"`

	LeaveOpeningAsOf    *time.Time      `gorm:"type:date"`
	LeaveOpeningAccrued decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	LeaveOpeningUsed    decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ApproverIDs returns the configured approvers in order, skipping empty slots.
func (e Employee) ApproverIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if e.FirstApproverID != nil {
		ids = append(ids, *e.FirstApproverID)
	}
	if e.SecondApproverID != nil {
		ids = append(ids, *e.SecondApproverID)
	}
	return ids
}
