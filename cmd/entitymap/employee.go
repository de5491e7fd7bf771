package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rzpsarthak13/tableentity/pkg/tableentity"
)

// Department is stored as JSON text under "DepartmentJson".
type Department struct {
	Name     string   `json:"name"`
	Code     string   `json:"code,omitempty"`
	Manager  *string  `json:"manager"`
	Budget   float64  `json:"budget"`
	Location []string `json:"location,omitempty"`
}

// Employee is the record type the CLI converts.
type Employee struct {
	Company    string
	ID         int64
	Name       string
	Age        int32
	Salary     float64
	Active     bool
	HireDate   time.Time
	ExternalID uuid.UUID
	Department Department
	Skills     []string
	Timestamp  string
}

// hireDateLayout keeps only the calendar date of HireDate.
const hireDateLayout = "2006-01-02"

func employeeOptions(ignored []string) tableentity.Options[Employee] {
	return tableentity.Options[Employee]{
		Ignore: ignored,
		Converters: tableentity.Converters[Employee]{
			"HireDate": {
				ToEntityProperty: func(e *Employee) interface{} {
					if e.HireDate.IsZero() {
						return nil
					}
					return e.HireDate.Format(hireDateLayout)
				},
				SetRecordProperty: func(e *Employee, value interface{}) error {
					if value == nil {
						return nil
					}
					text, ok := value.(string)
					if !ok {
						return fmt.Errorf("HireDate must be stored as text, got %T", value)
					}
					t, err := time.Parse(hireDateLayout, text)
					if err != nil {
						return err
					}
					e.HireDate = t
					return nil
				},
			},
		},
	}
}
