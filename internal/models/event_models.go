package models

// Department identifies which department owns an event.
type Department string

const (
	DepartmentPlanning    Department = "planning"
	DepartmentCreative    Department = "creative"
	DepartmentInformation Department = "information"
	DepartmentGeneral     Department = "general"
)

// DefaultDepartment is used when an entry or import row names no department.
const DefaultDepartment = DepartmentPlanning

// DepartmentNames maps departments to their display names.
var DepartmentNames = map[Department]string{
	DepartmentPlanning:    "기획운영부",
	DepartmentCreative:    "창의교육부",
	DepartmentInformation: "교육정보부",
	DepartmentGeneral:     "총무부",
}

// IsValidDepartment checks if the provided string is a known Department.
func IsValidDepartment(department string) bool {
	switch Department(department) {
	case DepartmentPlanning,
		DepartmentCreative,
		DepartmentInformation,
		DepartmentGeneral:
		return true
	default:
		return false
	}
}

// Event is a scheduled event. Several events may share a date.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"` // YYYY-MM-DD
	Department  Department `json:"department"`
	Description *string    `json:"description,omitempty"`
}
