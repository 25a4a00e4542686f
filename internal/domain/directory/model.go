package directory

import (
	"time"

	"github.com/phr/phr/internal/platform/identity"
)

// Patient is a self-registered patient profile. The profile key is the
// caller's identity reference; the control plane's invariants never depend
// on this data.
type Patient struct {
	ID               identity.Ref `db:"id" json:"id"`
	Name             string       `db:"name" json:"name"`
	Email            string       `db:"email" json:"email"`
	DateOfBirth      string       `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           string       `db:"gender" json:"gender,omitempty"`
	Phone            string       `db:"phone" json:"phone,omitempty"`
	Address          string       `db:"address" json:"address,omitempty"`
	EmergencyContact string       `db:"emergency_contact" json:"emergency_contact,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// Provider is a self-registered healthcare provider profile.
type Provider struct {
	ID                  identity.Ref `db:"id" json:"id"`
	Name                string       `db:"name" json:"name"`
	Specialty           string       `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber       string       `db:"license_number" json:"license_number,omitempty"`
	HospitalAffiliation string       `db:"hospital_affiliation" json:"hospital_affiliation,omitempty"`
	Email               string       `db:"email" json:"email"`
	Phone               string       `db:"phone" json:"phone,omitempty"`
	Verified            bool         `db:"verified" json:"verified"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
}
