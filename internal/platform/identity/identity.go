// Package identity defines the opaque caller identifier used throughout the
// control plane. References are issued by the external identity provider and
// are only ever compared by value, never interpreted.
package identity

// Ref is an opaque identity reference for a patient or provider.
type Ref string

// IsZero reports whether the reference is empty, i.e. no caller was supplied.
func (r Ref) IsZero() bool { return r == "" }

func (r Ref) String() string { return string(r) }
