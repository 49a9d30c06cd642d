package reconcile

import "frota/internal/model"

// CostCenterRow holds the editable fields of a cost center.
type CostCenterRow struct {
	Code        string `validate:"required,max=10"`
	Description string `validate:"required,max=50"`
}

// AuthorizedUserRow holds the editable fields of an authorized user.
// Enum fields are empty when the posted text did not parse, which fails "required".
type AuthorizedUserRow struct {
	Name          string              `validate:"required,max=50"`
	EmployeeCode  string              `validate:"max=15"`
	RequesterType model.RequesterType `validate:"required,oneof=Requester Rider Both"`
	Status        model.RecordStatus  `validate:"required,oneof=Active Inactive"`
	Phone1        string              `validate:"required,max=20"`
	Phone2        string              `validate:"max=20"`
	Email         string              `validate:"required,max=100"`
}

func CostCenterRowOf(cc model.CostCenter) CostCenterRow {
	return CostCenterRow{Code: cc.Code, Description: cc.Description}
}

func AuthorizedUserRowOf(u model.AuthorizedUser) AuthorizedUserRow {
	return AuthorizedUserRow{
		Name:          u.Name,
		EmployeeCode:  u.EmployeeCode,
		RequesterType: u.RequesterType,
		Status:        u.Status,
		Phone1:        u.Phone1,
		Phone2:        u.Phone2,
		Email:         u.Email,
	}
}

// Apply copies the row's fields onto a stored cost center.
func (r CostCenterRow) Apply(cc *model.CostCenter) {
	cc.Code = r.Code
	cc.Description = r.Description
}

// Apply copies the row's fields onto a stored authorized user.
func (r AuthorizedUserRow) Apply(u *model.AuthorizedUser) {
	u.Name = r.Name
	u.EmployeeCode = r.EmployeeCode
	u.RequesterType = r.RequesterType
	u.Status = r.Status
	u.Phone1 = r.Phone1
	u.Phone2 = r.Phone2
	u.Email = r.Email
}
