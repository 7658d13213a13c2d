package classify

import "fmt"

// Candidate is an object of the requested spectral type with its catalog
// flags.
type Candidate struct {
	Ref      string
	Gravity  Gravity // Gamma, Beta or Field, from the type text
	Young    bool
	Blue     bool
	Dusty    bool
	Binary   bool
	Peculiar bool
	Standard bool // the NIR standard of the type
	Excluded bool // listed in the exclusion table
}

// Role is how a selected object is shown next to the template.
type Role int

// Roles.
const (
	RoleExclude Role = iota
	RoleField
	RoleStandard
	RoleYoung
	RoleSpecial
)

var roleNames = [...]string{"exclude", "field", "standard", "young", "special"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// Decision is the outcome of Select for one candidate.
type Decision struct {
	Ref        string
	Role       Role
	InTemplate bool
}

// Select applies the member policy for the requested gravity class and
// returns one decision per candidate, in input order.
//
//   - Young: gamma, beta or young objects that are neither blue nor dusty.
//   - Gamma, Beta: objects of that class that are neither blue nor dusty.
//   - Field: objects without low-gravity signatures. Blue, dusty, binary and
//     peculiar objects are marked special and stay out of the template.
//   - Unspecified: every object that is neither blue nor dusty.
//
// Excluded candidates never contribute.
func Select(request Gravity, candidates []Candidate) []Decision {
	out := make([]Decision, len(candidates))
	for i, c := range candidates {
		role, in := decide(request, c)
		out[i] = Decision{Ref: c.Ref, Role: role, InTemplate: in}
	}
	return out
}

func decide(request Gravity, c Candidate) (Role, bool) {
	if c.Excluded {
		return RoleExclude, false
	}

	lowGravity := c.Gravity == Gamma || c.Gravity == Beta || c.Young
	oddColor := c.Blue || c.Dusty

	switch request {
	case Young:
		if !lowGravity || oddColor {
			return RoleExclude, false
		}
		return RoleYoung, true

	case Gamma, Beta:
		if c.Gravity != request || oddColor {
			return RoleExclude, false
		}
		return RoleYoung, true

	case Field:
		switch {
		case lowGravity:
			return RoleExclude, false
		case oddColor || c.Binary || c.Peculiar:
			return RoleSpecial, false
		case c.Standard:
			return RoleStandard, true
		default:
			return RoleField, true
		}

	default:
		switch {
		case oddColor:
			return RoleExclude, false
		case c.Young:
			return RoleYoung, true
		case c.Standard:
			return RoleStandard, true
		default:
			return RoleField, true
		}
	}
}

// Members returns the refs of the decisions marked InTemplate.
func Members(decisions []Decision) []string {
	var refs []string
	for _, d := range decisions {
		if d.InTemplate {
			refs = append(refs, d.Ref)
		}
	}
	return refs
}
