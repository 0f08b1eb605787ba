package employee

// UpdateLeaveProfileRequest patches the leave-related part of a profile.
// Nil fields are left untouched; an empty approver id clears the slot.
type UpdateLeaveProfileRequest struct {
	Role                        *string  `json:"role" binding:"omitempty,oneof=admin ceo supervisor employee"`
	Department                  *string  `json:"department"`
	HireDate                    *string  `json:"hire_date"`
	RequireTwoStepLeaveApproval *bool    `json:"require_two_step_leave_approval"`
	FirstApproverID             *string  `json:"first_approver_id" binding:"omitempty,uuid"`
	SecondApproverID            *string  `json:"second_approver_id" binding:"omitempty,uuid"`
	LeaveOpeningAsOf            *string  `json:"leave_opening_as_of"`
	LeaveOpeningAccrued         *float64 `json:"leave_opening_accrued" binding:"omitempty,gte=0"`
	LeaveOpeningUsed            *float64 `json:"leave_opening_used" binding:"omitempty,gte=0"`
}

type EmployeeResponse struct {
	ID                          string  `json:"id"`
	CompanyID                   string  `json:"company_id"`
	FullName                    string  `json:"full_name"`
	Email                       string  `json:"email"`
	Role                        string  `json:"role"`
	Department                  string  `json:"department,omitempty"`
	HireDate                    *string `json:"hire_date,omitempty"`
	RequireTwoStepLeaveApproval bool    `json:"require_two_step_leave_approval"`
	FirstApproverID             *string `json:"first_approver_id,omitempty"`
	SecondApproverID            *string `json:"second_approver_id,omitempty"`
	LeaveOpeningAsOf            *string `json:"leave_opening_as_of,omitempty"`
	LeaveOpeningAccrued         float64 `json:"leave_opening_accrued"`
	LeaveOpeningUsed            float64 `json:"leave_opening_used"`
}

// DirectoryQuery filters and pages the company directory. Role accepts a
// comma separated list so approver pickers can ask for
// "admin,ceo,supervisor" in one call.
type DirectoryQuery struct {
	Q          string `form:"q"`
	Department string `form:"department"`
	Role       string `form:"role"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=name email department"`
	SortDir    string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}
