package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Achievement is one append-only ledger entry recording a point award.
type Achievement struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Points      int       `json:"points"`
	Approved    bool      `json:"approved"`
	Evidence    string    `json:"evidence"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddPointsRequest is the body for POST /admin/add-points/{id}.
type AddPointsRequest struct {
	Points PointsInput `json:"points" form:"points"`
	Note   string `json:"note"   form:"note"   validate:"max=200"`
}

// PointsInput is the raw points value of an award request: a JSON number, a
// JSON string, or any other literal kept verbatim. Integer parsing happens in
// the handler.
type PointsInput string

func (p *PointsInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PointsInput(s)
		return nil
	}
	*p = PointsInput(b)
	return nil
}
