package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyLogin             = errors.New("login is required")
	ErrMasterPasswordTooShort = errors.New("master password is too short")
	ErrEmptyTableName         = errors.New("table name is required")
	ErrEmptyRow               = errors.New("row must have at least one column")
	ErrEmptyColumnName        = errors.New("column name cannot be empty")
	ErrReservedColumn         = errors.New("column is maintained by the sync engine")
)
