package domain

import "time"

const (
	EmployeeActive     = "Active"
	EmployeeOnLeave    = "On Leave"
	EmployeeTerminated = "Terminated"
	EmployeeResigned   = "Resigned"
)

type Address struct {
	Street  string `json:"street,omitempty"  bson:"street,omitempty"`
	City    string `json:"city,omitempty"    bson:"city,omitempty"`
	State   string `json:"state,omitempty"   bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"         bson:"name,omitempty"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"        bson:"phone,omitempty"`
}

type PersonalDetails struct {
	FirstName        string           `json:"firstName"        bson:"firstName"        validate:"required"`
	LastName         string           `json:"lastName"         bson:"lastName"         validate:"required"`
	DateOfBirth      Date             `json:"dateOfBirth"      bson:"dateOfBirth"      validate:"required"`
	Gender           string           `json:"gender"           bson:"gender"           validate:"required,oneof=Male Female Other"`
	ContactNumber    string           `json:"contactNumber"    bson:"contactNumber"    validate:"required"`
	PersonalEmail    string           `json:"personalEmail"    bson:"personalEmail"    validate:"required,email"`
	Address          Address          `json:"address"          bson:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact" bson:"emergencyContact"`
}

type JobDetails struct {
	Department     string   `json:"department"             bson:"department"             validate:"required"`
	Position       string   `json:"position"               bson:"position"               validate:"required"`
	HireDate       Date     `json:"hireDate"               bson:"hireDate"               validate:"required"`
	EmploymentType string   `json:"employmentType"         bson:"employmentType"         validate:"required,oneof=Full-time Part-time Contract Temporary"`
	Salary         *float64 `json:"salary"                 bson:"salary"                 validate:"required,gte=0"`
	Manager        string   `json:"manager,omitempty"      bson:"manager,omitempty"      validate:"omitempty,mongodb"`
	WorkLocation   string   `json:"workLocation,omitempty" bson:"workLocation,omitempty"`
	WorkSchedule   string   `json:"workSchedule,omitempty" bson:"workSchedule,omitempty"`
}

type Performance struct {
	LastReviewDate      Date     `json:"lastReviewDate"      bson:"lastReviewDate,omitempty"`
	NextReviewDate      Date     `json:"nextReviewDate"      bson:"nextReviewDate,omitempty"`
	OverallRating       *float64 `json:"overallRating"       bson:"overallRating,omitempty" validate:"omitempty,min=1,max=5"`
	Strengths           []string `json:"strengths"           bson:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement" bson:"areasForImprovement"`
	Goals               []string `json:"goals"               bson:"goals"`
}

// EmployeeProfile is the editable body of an employee record.
type EmployeeProfile struct {
	PersonalDetails PersonalDetails `json:"personalDetails" bson:"personalDetails"`
	JobDetails      JobDetails      `json:"jobDetails"      bson:"jobDetails"`
	Performance     Performance     `json:"performance"     bson:"performance"`
	Status          string          `json:"status"          bson:"status" validate:"omitempty,oneof=Active 'On Leave' Terminated Resigned"`
}

// Employee wraps a user reference with personal and job details.
type Employee struct {
	ID              string `json:"id"         bson:"_id,omitempty"`
	EmployeeID      string `json:"employeeId" bson:"employeeId"`
	User            string `json:"user"       bson:"user"`
	EmployeeProfile `bson:",inline"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills schema defaults that the caller left empty.
func (e *Employee) ApplyDefaults() {
	if e.Status == "" {
		e.Status = EmployeeActive
	}
}

// FullName joins the personal first and last name.
func (e *Employee) FullName() string {
	return e.PersonalDetails.FirstName + " " + e.PersonalDetails.LastName
}
