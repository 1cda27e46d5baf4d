// Package policy decides who may touch which resource and which fields they
// may change.
//
// Rules, evaluated in order:
//   - Admins may do anything to any resource, with full field mutability.
//   - A non-admin acting on their own resource is allowed, limited to the
//     owner allow-list of that resource kind.
//   - Anything else is denied with ErrForbidden.
//
// Collections are not allow/deny decisions: ListScope narrows them to the
// caller's own resources unless the caller is an admin.
package policy

import (
	"errors"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/models"
)

// ErrForbidden is returned when the policy denies an operation.
var ErrForbidden = errors.New("forbidden")

// Kind tags the resource a decision is made for.
type Kind int

const (
	KindReport Kind = iota
	KindReportImage
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindReport:
		return "report"
	case KindReportImage:
		return "report_image"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Target identifies the resource being acted on. OwnerID is the owning user
// id; for KindUser it is the id of the target user itself.
type Target struct {
	Kind    Kind
	OwnerID uint
}

// FieldSet is a set of JSON field names.
type FieldSet map[string]struct{}

func newFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

var (
	ownerFields = map[Kind]FieldSet{
		KindReport:      newFieldSet("title", "description", "type", "latitude", "longitude", "address"),
		KindReportImage: newFieldSet(),
		KindUser:        newFieldSet("name", "email", "password"),
	}
	adminFields = map[Kind]FieldSet{
		KindReport:      newFieldSet("title", "description", "type", "latitude", "longitude", "address", "status"),
		KindReportImage: newFieldSet(),
		KindUser:        newFieldSet("name", "email", "password", "role"),
	}
)

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool
	Mutable FieldSet
}

// Filter returns the subset of fields the decision allows to be changed.
// Unknown and disallowed keys are dropped silently.
func (d Decision) Filter(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	if !d.Allowed {
		return out
	}
	for k, v := range fields {
		if d.Mutable.Has(k) {
			out[k] = v
		}
	}
	return out
}

func IsAdmin(id auth.Identity) bool {
	return id.Role == models.RoleAdmin
}

// Evaluate applies the authorization rules to a single resource.
func Evaluate(id auth.Identity, t Target) Decision {
	if IsAdmin(id) {
		return Decision{Allowed: true, Mutable: adminFields[t.Kind]}
	}
	if id.UserID != 0 && id.UserID == t.OwnerID {
		return Decision{Allowed: true, Mutable: ownerFields[t.Kind]}
	}
	return Decision{Allowed: false, Mutable: FieldSet{}}
}

// Authorize is Evaluate returning ErrForbidden on denial.
func Authorize(id auth.Identity, t Target) (Decision, error) {
	d := Evaluate(id, t)
	if !d.Allowed {
		return d, ErrForbidden
	}
	return d, nil
}

// RequireAdmin guards admin-only operations.
func RequireAdmin(id auth.Identity) error {
	if !IsAdmin(id) {
		return ErrForbidden
	}
	return nil
}

// Scope describes which rows of a collection the caller may see.
type Scope struct {
	// All is true for admins. Otherwise only rows owned by OwnerID are visible.
	All     bool
	OwnerID uint
}

func ListScope(id auth.Identity) Scope {
	if IsAdmin(id) {
		return Scope{All: true}
	}
	return Scope{OwnerID: id.UserID}
}
