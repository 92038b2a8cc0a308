package entities

import "time"

type RecordType string

const (
	RecordTypeText     RecordType = "text"
	RecordTypeTextarea RecordType = "textarea"
	RecordTypeCheckbox RecordType = "checkbox"
	RecordTypeDate     RecordType = "date"
	RecordTypeEmail    RecordType = "email"
	RecordTypePhone    RecordType = "phone"
	RecordTypePrice    RecordType = "price"
	RecordTypeChoice   RecordType = "choice"
)

// RecordScope tells whether answers belong to the member or to a registration.
type RecordScope string

const (
	RecordScopeMember       RecordScope = "member"
	RecordScopeRegistration RecordScope = "registration"
)

// Record is one custom question an organization asks its members.
type Record struct {
	ID       string     `yaml:"id" json:"id"`
	Name     string     `yaml:"name" json:"name"`
	Type     RecordType `yaml:"type" json:"type"`
	Required bool       `yaml:"required" json:"required"`
	Choices  []string   `yaml:"choices,omitempty" json:"choices,omitempty"`
	Keywords []string   `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

type RecordCategory struct {
	ID      string      `yaml:"id" json:"id"`
	Name    string      `yaml:"name" json:"name"`
	Scope   RecordScope `yaml:"scope" json:"scope"`
	Records []Record    `yaml:"records" json:"records"`
}

// RecordAnswer is the answer of one member to one record.
type RecordAnswer struct {
	RecordID string     `json:"record_id"`
	Type     RecordType `json:"type"`
	Text     string     `json:"text,omitempty"`
	Checked  bool       `json:"checked,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Price    int64      `json:"price,omitempty"`
}
