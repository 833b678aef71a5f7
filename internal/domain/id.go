package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for model-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// columnID derives the stable identifier of a physical column.
func columnID(table, column string) string {
	return "PC_" + strings.ToUpper(table) + "_" + strings.ToUpper(column)
}

// fieldID derives the stable identifier of a logical (category) field.
func fieldID(table, column string) string {
	return "LC_" + strings.ToUpper(table) + "_" + strings.ToUpper(column)
}
