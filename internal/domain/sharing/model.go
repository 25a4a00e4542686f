package sharing

import (
	"time"

	"github.com/phr/phr/internal/platform/identity"
)

// Status is the share request lifecycle state. Pending is the only
// non-terminal state; no transition ever leaves a terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// ShareRequest is a patient-authored proposal to grant a provider read
// access to a set of records, subject to approval and a fixed TTL. Record
// ownership is not verified at creation; it is re-checked per record at
// approval time.
type ShareRequest struct {
	ID          string         `db:"id" json:"id"`
	Patient     identity.Ref   `db:"patient_id" json:"patient"`
	Provider    identity.Ref   `db:"provider_id" json:"provider"`
	RecordIDs   []string       `db:"record_ids" json:"record_ids"`
	Status      Status         `db:"status" json:"status"`
	Message     string         `db:"message" json:"message"`
	RequestedAt time.Time      `db:"requested_at" json:"requested_at"`
	ExpiresAt   time.Time      `db:"expires_at" json:"expires_at"`
}

// Clone returns an independent copy.
func (r *ShareRequest) Clone() *ShareRequest {
	cp := *r
	cp.RecordIDs = append([]string(nil), r.RecordIDs...)
	return &cp
}

// CreateRequest carries the caller-supplied fields for a new share request.
type CreateRequest struct {
	Provider  identity.Ref `json:"provider"`
	RecordIDs []string     `json:"record_ids"`
	Message   string       `json:"message"`
}
