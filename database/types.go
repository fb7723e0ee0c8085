package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

/* ========================================================================
 * JSONB Type
 * ========================================================================
 * PostgreSQL JSONB mapping shared by models (e.g. receipt image
 * metadata). Stored as TEXT on engines without a native JSON type.
 * ======================================================================== */

// JSONB maps a PostgreSQL JSONB column.
type JSONB map[string]interface{}

// Value implements driver.Valuer.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
	return json.Unmarshal(data, j)
}
