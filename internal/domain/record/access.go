package record

import "github.com/phr/phr/internal/platform/identity"

// CanRead reports whether caller may read the record: the owner always can,
// anyone else only while present in shared_with. Evaluated fresh on every
// call since ownership and sharing can change between calls.
func CanRead(r *HealthRecord, caller identity.Ref) bool {
	return caller == r.Owner || r.IsSharedWith(caller)
}

// CanWrite reports whether caller may mutate or delete the record. Only the
// owner ever can; grantees hold read access only.
func CanWrite(r *HealthRecord, caller identity.Ref) bool {
	return caller == r.Owner
}
