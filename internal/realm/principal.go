package realm

// Authority is a single named permission or role granted to a principal.
// Authorities have no identity beyond their name; equality is exact
// string equality after the role prefix has been applied.
type Authority struct {
	Name string `json:"name"`
}

// UserRecord is one row of the users-by-username query: the stored
// username, the opaque password representation, and the enabled flag.
// The password is carried verbatim; this package never hashes or
// compares credentials.
type UserRecord struct {
	Username string
	Password string
	Enabled  bool
}

// Principal is the fully resolved identity handed to the upstream
// authentication layer: the canonical username, the opaque credentials,
// the enabled flag, and the aggregated authority set.
//
// Authorities is a set: uniqueness by name, order not significant.
// The only exception is duplicates appended by a custom-authorities
// hook, which are preserved as-is.
//
// All fields, the password included, survive JSON serialization so
// that a cached principal is identical to a freshly resolved one.
// Outward-facing surfaces must render their own view instead of
// marshaling a Principal directly.
type Principal struct {
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	Enabled     bool        `json:"enabled"`
	Authorities []Authority `json:"authorities"`
}

// HasAuthority reports whether the principal holds the named authority.
func (p *Principal) HasAuthority(name string) bool {
	for _, a := range p.Authorities {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AuthorityNames returns the names of all granted authorities.
func (p *Principal) AuthorityNames() []string {
	names := make([]string, 0, len(p.Authorities))
	for _, a := range p.Authorities {
		names = append(names, a.Name)
	}
	return names
}
