package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
)

// JSON is a raw JSON column value implementing driver.Valuer and sql.Scanner.
// A hand-rolled type is used instead of gorm.io/datatypes to keep the SQLite
// driver graph clean; it validates payloads on the way in and out.
type JSON json.RawMessage

// Value implements driver.Valuer for database writes.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	var tmp interface{}
	if err := json.Unmarshal(j, &tmp); err != nil {
		return nil, eris.Wrap(err, "invalid JSON value")
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner for database reads.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("null")
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return eris.Errorf("unsupported JSON column type %T", value)
	}

	var tmp interface{}
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return eris.Wrap(err, "invalid JSON in database")
	}

	*j = JSON(raw)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return eris.New("JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// String returns the JSON as a string.
func (j JSON) String() string {
	return string(j)
}

// EmptyObject is the default value for metadata blobs.
func EmptyObject() JSON {
	return JSON("{}")
}

var _ fmt.Stringer = JSON(nil)
