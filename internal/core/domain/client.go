package domain

import "time"

const (
	ClientActive    = "Active"
	ClientInactive  = "Inactive"
	ClientSuspended = "Suspended"

	ContractDraft = "Draft"
)

type ContactPerson struct {
	FirstName string `json:"firstName"          bson:"firstName" validate:"required"`
	LastName  string `json:"lastName"           bson:"lastName"  validate:"required"`
	Position  string `json:"position,omitempty" bson:"position,omitempty"`
}

type ContactDetails struct {
	Email          string `json:"email"                    bson:"email" validate:"required,email"`
	Phone          string `json:"phone"                    bson:"phone" validate:"required"`
	AlternatePhone string `json:"alternatePhone,omitempty" bson:"alternatePhone,omitempty"`
}

type BusinessDetails struct {
	Industry    string `json:"industry,omitempty"    bson:"industry,omitempty"`
	CompanySize string `json:"companySize,omitempty" bson:"companySize,omitempty"`
	TaxID       string `json:"taxId,omitempty"       bson:"taxId,omitempty"`
	Website     string `json:"website,omitempty"     bson:"website,omitempty"`
}

type Contract struct {
	ID          string   `json:"id"                    bson:"id"`
	Title       string   `json:"title"                 bson:"title"     validate:"required"`
	StartDate   Date     `json:"startDate"             bson:"startDate" validate:"required"`
	EndDate     Date     `json:"endDate"               bson:"endDate"   validate:"required"`
	Value       *float64 `json:"value"                 bson:"value"     validate:"required,gte=0"`
	Status      string   `json:"status"                bson:"status"    validate:"omitempty,oneof=Active Expired Terminated Draft"`
	DocumentURL string   `json:"documentUrl,omitempty" bson:"documentUrl,omitempty"`
}

// ClientProfile is the editable body of a client record.
type ClientProfile struct {
	CompanyName     string          `json:"companyName"     bson:"companyName" validate:"required,max=100"`
	ContactPerson   ContactPerson   `json:"contactPerson"   bson:"contactPerson"`
	ContactDetails  ContactDetails  `json:"contactDetails"  bson:"contactDetails"`
	Address         Address         `json:"address"         bson:"address"`
	BusinessDetails BusinessDetails `json:"businessDetails" bson:"businessDetails"`
	Status          string          `json:"status"          bson:"status"          validate:"omitempty,oneof=Active Inactive Suspended"`
	Notes           string          `json:"notes,omitempty" bson:"notes,omitempty"`
	AssignedManager string          `json:"assignedManager" bson:"assignedManager" validate:"omitempty,mongodb"`
}

// Client is a company record managed by a client manager.
type Client struct {
	ID            string `json:"id"       bson:"_id,omitempty"`
	ClientID      string `json:"clientId" bson:"clientId"`
	ClientProfile `bson:",inline"`
	Contracts     []Contract `json:"contracts" bson:"contracts"`
	Projects      []string   `json:"projects"  bson:"projects"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills schema defaults that the caller left empty.
func (c *Client) ApplyDefaults() {
	if c.Status == "" {
		c.Status = ClientActive
	}
	if c.Contracts == nil {
		c.Contracts = []Contract{}
	}
	if c.Projects == nil {
		c.Projects = []string{}
	}
}

// Summary is the populated form of a client reference.
func (c *Client) Summary() *ClientSummary {
	if c == nil {
		return nil
	}
	return &ClientSummary{ID: c.ID, ClientID: c.ClientID, CompanyName: c.CompanyName, ContactPerson: c.ContactPerson}
}

type ClientSummary struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"clientId"`
	CompanyName   string        `json:"companyName"`
	ContactPerson ContactPerson `json:"contactPerson"`
}
