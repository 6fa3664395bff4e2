package model

import (
	"encoding/json"
	"fmt"
)

// UnresolvedReferenceError reports a read of a new-entity reference
// before it was resolved to a durable id. It indicates a bug in the
// calling code, not bad user input.
type UnresolvedReferenceError struct {
	Kind string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s reference read before resolution", e.Kind)
}

// Ref points at an entity that either already exists (by id) or still
// needs to be created from F, the new-entity fields. The same type is
// used for user, shop, category, and product slots in a draft so the
// create-or-reference logic is written once.
//
// A zero Ref is "unset"; whether that is legal depends on the slot
// (a product's category may be absent, a draft's user may not).
type Ref[F any] struct {
	fields     *F
	existingID int64
	resolvedID int64
}

// ExistingRef returns a reference to an already-persisted entity.
func ExistingRef[F any](id int64) Ref[F] {
	return Ref[F]{existingID: id}
}

// NewRef returns a reference to an entity that must be created from fields.
func NewRef[F any](fields F) Ref[F] {
	return Ref[F]{fields: &fields}
}

// IsZero reports whether the reference is unset.
func (r Ref[F]) IsZero() bool {
	return r.existingID == 0 && r.fields == nil
}

// IsNew reports whether the reference requires a creation call.
func (r Ref[F]) IsNew() bool {
	return r.fields != nil
}

// IsResolved reports whether a new reference has been assigned an id.
// Existing references are resolved by definition.
func (r Ref[F]) IsResolved() bool {
	return !r.IsNew() || r.resolvedID != 0
}

// Fields returns the new-entity fields. Only meaningful when IsNew.
func (r Ref[F]) Fields() F {
	if r.fields == nil {
		var zero F
		return zero
	}
	return *r.fields
}

// Resolve records the id assigned to a newly created entity.
func (r *Ref[F]) Resolve(id int64) {
	r.resolvedID = id
}

// ResolvedID returns the durable id behind the reference: the existing
// id, or the id recorded by Resolve. Reading a new reference before it
// was resolved is a contract violation.
func (r Ref[F]) ResolvedID(kind string) (int64, error) {
	if !r.IsNew() {
		return r.existingID, nil
	}
	if r.resolvedID == 0 {
		return 0, &UnresolvedReferenceError{Kind: kind}
	}
	return r.resolvedID, nil
}

// refJSON is the wire shape of a Ref in draft files: {"id": 3} for an
// existing entity, {"new": {...}} for one to create.
type refJSON[F any] struct {
	New *F    `json:"new,omitempty"`
	ID  int64 `json:"id,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Ref[F]) MarshalJSON() ([]byte, error) {
	return json.Marshal(refJSON[F]{ID: r.existingID, New: r.fields})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref[F]) UnmarshalJSON(data []byte) error {
	var raw refJSON[F]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID != 0 && raw.New != nil {
		return fmt.Errorf("reference cannot carry both an id and new-entity fields")
	}
	*r = Ref[F]{existingID: raw.ID, fields: raw.New}
	return nil
}
