package entity

// Role is the authorization level of a user.
// A contributor has supplied a name (and optionally a bio) and may author ideas.
type Role string

const (
	RoleUser        Role = "user"
	RoleContributor Role = "contributor"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleContributor
}
