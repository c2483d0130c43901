package models

import (
	"time"

	id "recordgate/pkg/domain"
)

// Record is the entity resolved by identifier. The gateway only observes
// whether a record exists; the remaining fields belong to the stores and the
// HTTP surface.
type Record struct {
	ID        id.RecordID `json:"id"`
	Name      string      `json:"name"`
	Age       int         `json:"age"`
	CreatedAt time.Time   `json:"created_at"`
}
