package domain

import (
	"strconv"
	"strings"

	dErrors "recordgate/pkg/domain-errors"
)

// RecordID identifies a record in the store. Any int64 is a valid identifier;
// zero and negative values are passed through to the store unchanged.
type RecordID int64

// ParseRecordID parses a base-10 identifier from a trust boundary such as a
// URL path segment.
func ParseRecordID(s string) (RecordID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "record ID required")
	}
	if strings.TrimSpace(s) != s {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid record ID")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid record ID")
	}
	return RecordID(n), nil
}

func (id RecordID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Int64 returns the raw identifier for storage drivers.
func (id RecordID) Int64() int64 {
	return int64(id)
}
