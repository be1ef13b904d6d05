package tracecfg

import "errors"

var (
	// ErrSchemaConflict is returned when the application and runtime scopes
	// declare the same field name with incompatible types.
	ErrSchemaConflict = errors.New("schema scopes declare the same field with incompatible types")
	// ErrBadValue is returned when a raw source value cannot be converted to
	// the field's declared type.
	ErrBadValue = errors.New("value cannot be converted to the declared field type")
	// ErrSourceNotFound is returned when an explicitly requested file source
	// does not exist.
	ErrSourceNotFound = errors.New("requested configuration source does not exist")
	// ErrNotConfigured is returned when the live handle is read before any
	// configuration has been installed.
	ErrNotConfigured = errors.New("configuration not installed, call Setup or Install first")
)
