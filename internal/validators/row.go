package validators

import (
	"context"
	"fmt"

	"github.com/ykarpov/go-vault-sync/models"
)

// Field name constants for row-edit validation.
const (
	// FieldTable targets the destination table name.
	FieldTable = "table"

	// FieldRow targets the column set of the edited row.
	FieldRow = "row"
)

// reservedColumns are stamped by the vault editor itself; user input naming
// them would be silently overwritten, so it is rejected up front.
var reservedColumns = map[string]struct{}{
	"updated_at": {},
	"created_at": {},
	"is_deleted": {},
	"deleted_at": {},
}

// RowInput is a vault row edit as collected from the command line.
type RowInput struct {
	Table string
	Row   models.Row
}

// RowInputValidator implements [Validator] for [RowInput].
type RowInputValidator struct{}

func NewRowInputValidator() *RowInputValidator {
	return &RowInputValidator{}
}

// Validate checks the given [RowInput]. With no field names it validates
// everything; otherwise only the named fields.
func (v *RowInputValidator) Validate(_ context.Context, value any, fields ...string) error {
	input, ok := value.(RowInput)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}

	if len(fields) == 0 {
		fields = []string{FieldTable, FieldRow}
	}

	for _, field := range fields {
		switch field {
		case FieldTable:
			if input.Table == "" {
				return ErrEmptyTableName
			}
		case FieldRow:
			if len(input.Row) == 0 {
				return ErrEmptyRow
			}
			for column := range input.Row {
				if column == "" {
					return ErrEmptyColumnName
				}
				if _, reserved := reservedColumns[column]; reserved {
					return fmt.Errorf("%w: %q", ErrReservedColumn, column)
				}
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}
