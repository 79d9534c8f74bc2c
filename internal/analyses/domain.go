// Package analyses manages the catalog of laboratory test templates.
package analyses

import (
	"time"

	"github.com/google/uuid"
)

// The fixed analysis categories offered by the laboratory.
const (
	TypeHematology = "Hematología clínica"
	TypeRoutine    = "Perfil de rutina"
	TypeChemistry  = "Química clínica"
	TypeCoprology  = "Coprología"
	TypeSerology   = "Serología"
	TypeUrinalysis = "Uroanálisis"
	TypeHormones   = "Hormonales"
)

// Types lists every valid analysis category.
func Types() []string {
	return []string{
		TypeHematology,
		TypeRoutine,
		TypeChemistry,
		TypeCoprology,
		TypeSerology,
		TypeUrinalysis,
		TypeHormones,
	}
}

// ValidType reports whether t names one of the fixed categories.
func ValidType(t string) bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Field is one measured parameter of an analysis template, for example
// hemoglobin with its unit and reference range.
type Field struct {
	Name           string `json:"name"`
	Measurement    string `json:"measurement"`
	ReferenceValue string `json:"referenceValue"`
}

// Analysis is a test template. Its fields are copied into each sample
// registered against it.
type Analysis struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Type        string    `json:"type"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Update carries a partial analysis mutation; nil fields stay untouched.
type Update struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Fields      *[]Field `json:"fields"`
}
