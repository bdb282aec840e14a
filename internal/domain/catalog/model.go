package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the lab_test_catalog table. It is the authoritative
// identity a reconciled lab-test suggestion must trace back to.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        *string   `db:"code" json:"code,omitempty"`
	LoincCode   *string   `db:"loinc_code" json:"loinc_code,omitempty"`
	Category    string    `db:"category" json:"category"`
	Description *string   `db:"description" json:"description,omitempty"`
	Cost        *string   `db:"cost" json:"cost,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
