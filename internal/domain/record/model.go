package record

import (
	"encoding/json"
	"time"

	"github.com/phr/phr/internal/platform/identity"
)

// RecordType enumerates the kinds of health record a patient can store.
type RecordType string

const (
	TypeMedicalHistory RecordType = "medical_history"
	TypePrescription   RecordType = "prescription"
	TypeLabResult      RecordType = "lab_result"
	TypeVaccination    RecordType = "vaccination"
	TypeAllergy        RecordType = "allergy"
	TypeSurgery        RecordType = "surgery"
	TypeConsultation   RecordType = "consultation"
	TypeOther          RecordType = "other"
)

func (t RecordType) Valid() bool {
	switch t {
	case TypeMedicalHistory, TypePrescription, TypeLabResult, TypeVaccination,
		TypeAllergy, TypeSurgery, TypeConsultation, TypeOther:
		return true
	}
	return false
}

// HealthRecord is a patient-owned record. The payload is an opaque blob the
// control plane stores but never inspects. Owner is immutable after creation;
// shared_with is a duplicate-free set of grantees with read access.
type HealthRecord struct {
	ID          string          `db:"id" json:"id"`
	Owner       identity.Ref    `db:"owner_id" json:"owner"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	RecordType  RecordType      `db:"record_type" json:"record_type"`
	Payload     json.RawMessage `db:"payload" json:"payload,omitempty"`
	SharedWith  []identity.Ref  `db:"shared_with" json:"shared_with"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// IsSharedWith reports whether grantee currently holds read access.
func (r *HealthRecord) IsSharedWith(grantee identity.Ref) bool {
	for _, g := range r.SharedWith {
		if g == grantee {
			return true
		}
	}
	return false
}

// addGrantee adds grantee to the shared_with set. Returns false when the
// grantee was already present (set semantics, never a duplicate).
func (r *HealthRecord) addGrantee(grantee identity.Ref) bool {
	if r.IsSharedWith(grantee) {
		return false
	}
	r.SharedWith = append(r.SharedWith, grantee)
	return true
}

// removeGrantee removes grantee from the shared_with set. Returns false when
// the grantee was not present.
func (r *HealthRecord) removeGrantee(grantee identity.Ref) bool {
	for i, g := range r.SharedWith {
		if g == grantee {
			r.SharedWith = append(r.SharedWith[:i], r.SharedWith[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy so callers can never alias store state.
func (r *HealthRecord) Clone() *HealthRecord {
	cp := *r
	cp.SharedWith = append([]identity.Ref(nil), r.SharedWith...)
	cp.Payload = append(json.RawMessage(nil), r.Payload...)
	return &cp
}

// CreateRequest carries the caller-supplied fields for a new record.
type CreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	RecordType  RecordType      `json:"record_type"`
	Payload     json.RawMessage `json:"payload"`
}

// UpdateRequest carries a partial update. Nil fields are left untouched
// (patch semantics, not replace).
type UpdateRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Payload     json.RawMessage `json:"payload"`
}
