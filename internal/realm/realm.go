// Package realm resolves a principal's authentication record and granted
// authorities from a relational store. It bridges the default
// users/authorities/groups schema (or any schema reachable through
// overridden queries) and an in-memory Principal value consumed by an
// upstream authentication mechanism.
//
// The package never verifies credentials: the password column is loaded
// verbatim as an opaque value.
package realm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Default lookup queries. Each takes the username as its sole positional
// parameter. Override them through Options when the schema differs, but
// keep the documented column layout: the user query must return
// (username, password, enabled), the authorities query keeps the
// authority name in column 2, and the group join keeps it in column 3.
const (
	DefaultUsersByUsernameQuery = "SELECT username, password, enabled " +
		"FROM users " +
		"WHERE username = ?"

	DefaultAuthoritiesByUsernameQuery = "SELECT username, authority " +
		"FROM authorities " +
		"WHERE username = ?"

	DefaultGroupAuthoritiesByUsernameQuery = "SELECT g.id, g.group_name, ga.authority " +
		"FROM groups g, group_members gm, group_authorities ga " +
		"WHERE gm.username = ? " +
		"AND g.id = ga.group_id " +
		"AND g.id = gm.group_id"
)

// Column positions (0-based) of the authority name in the two authority
// queries.
const (
	authorityNameColumn      = 1
	groupAuthorityNameColumn = 2
)

// Queryer executes a parameterized query against the backing store.
// It is the only capability the resolver needs; connection management,
// dialect concerns and timeouts all live behind it. Implementations
// must be safe for concurrent use.
type Queryer interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// HookFunc may append authorities computed outside the store (static
// role assignment, claims from another system) to the aggregated list.
// It runs after the store-backed sources have been merged and
// deduplicated; values it appends are not re-deduplicated against the
// existing entries. Returning an empty slice leaves the principal
// without authorities and Resolve fails accordingly.
type HookFunc func(username string, authorities []Authority) []Authority

// Options configures a Resolver. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	// Query overrides. Empty selects the package default.
	UsersQuery            string
	AuthoritiesQuery      string
	GroupAuthoritiesQuery string

	// RolePrefix is prepended to every authority name read from the
	// store, from both sources. Default empty (no transform).
	RolePrefix string

	// UseStoreUsername selects the canonical identifier attached to the
	// resolved Principal: true (default) takes the username returned by
	// the user query, false keeps the caller-supplied argument.
	UseStoreUsername bool

	// EnableAuthorities loads direct grants from the authorities query.
	// Default true.
	EnableAuthorities bool

	// EnableGroups loads grants derived from group membership.
	// Default false.
	EnableGroups bool

	// CustomAuthorities, when non-nil, runs after store-backed
	// aggregation. See HookFunc.
	CustomAuthorities HookFunc
}

// DefaultOptions returns the default resolver configuration: default
// queries, no role prefix, store-derived username, direct authorities
// enabled, group authorities disabled.
func DefaultOptions() Options {
	return Options{
		UseStoreUsername:  true,
		EnableAuthorities: true,
	}
}

// Resolver loads and aggregates principals. It is immutable after New
// and safe for concurrent use as long as the underlying Queryer is.
type Resolver struct {
	q    Queryer
	opts Options
}

// New validates opts and builds a Resolver. At least one of
// EnableAuthorities and EnableGroups must be set; otherwise
// ErrNoAuthoritySource is returned.
func New(q Queryer, opts Options) (*Resolver, error) {
	if q == nil {
		return nil, fmt.Errorf("realm: queryer must not be nil")
	}
	if !opts.EnableAuthorities && !opts.EnableGroups {
		return nil, ErrNoAuthoritySource
	}
	if opts.UsersQuery == "" {
		opts.UsersQuery = DefaultUsersByUsernameQuery
	}
	if opts.AuthoritiesQuery == "" {
		opts.AuthoritiesQuery = DefaultAuthoritiesByUsernameQuery
	}
	if opts.GroupAuthoritiesQuery == "" {
		opts.GroupAuthoritiesQuery = DefaultGroupAuthoritiesByUsernameQuery
	}
	return &Resolver{q: q, opts: opts}, nil
}

// Resolve looks up the user record for username, aggregates its
// authorities and returns the resolved Principal.
//
// It fails with UserNotFoundError when no user row matches (no
// authority queries are issued in that case) and with NoAuthorityError
// when the record exists but ends up with an empty authority list.
// Store failures propagate untranslated.
func (r *Resolver) Resolve(ctx context.Context, username string) (*Principal, error) {
	users, err := r.loadUsers(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &UserNotFoundError{Username: username}
	}

	// Only the first matching row is used, even if the query returns
	// more than one.
	user := users[0]

	// Authority queries run with the record's own username, but a
	// no-authority failure reports the name the caller asked about.
	authorities, err := r.Authorities(ctx, user.Username)
	if err != nil {
		var noAuth *NoAuthorityError
		if errors.As(err, &noAuth) {
			return nil, &NoAuthorityError{Username: username}
		}
		return nil, err
	}

	resolved := user.Username
	if !r.opts.UseStoreUsername {
		resolved = username
	}

	return &Principal{
		Username:    resolved,
		Password:    user.Password,
		Enabled:     user.Enabled,
		Authorities: authorities,
	}, nil
}

// Authorities aggregates the authority set for username: the union of
// the enabled store-backed sources (deduplicated by name), extended by
// the custom-authorities hook. Fails with NoAuthorityError when the
// final list is empty.
func (r *Resolver) Authorities(ctx context.Context, username string) ([]Authority, error) {
	seen := make(map[string]struct{})
	var merged []Authority

	union := func(authorities []Authority) {
		for _, a := range authorities {
			if _, ok := seen[a.Name]; ok {
				continue
			}
			seen[a.Name] = struct{}{}
			merged = append(merged, a)
		}
	}

	if r.opts.EnableAuthorities {
		direct, err := r.loadAuthorities(ctx, r.opts.AuthoritiesQuery, authorityNameColumn, username)
		if err != nil {
			return nil, err
		}
		union(direct)
	}

	if r.opts.EnableGroups {
		grouped, err := r.loadAuthorities(ctx, r.opts.GroupAuthoritiesQuery, groupAuthorityNameColumn, username)
		if err != nil {
			return nil, err
		}
		union(grouped)
	}

	if r.opts.CustomAuthorities != nil {
		merged = r.opts.CustomAuthorities(username, merged)
	}

	if len(merged) == 0 {
		return nil, &NoAuthorityError{Username: username}
	}
	return merged, nil
}

// loadUsers runs the users query and maps every row to a UserRecord.
// An empty result is not an error at this layer.
func (r *Resolver) loadUsers(ctx context.Context, username string) ([]UserRecord, error) {
	rows, err := r.q.Query(ctx, r.opts.UsersQuery, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) < 3 {
		return nil, fmt.Errorf(
			"realm: users query returned %d columns, need (username, password, enabled)", len(cols))
	}

	var users []UserRecord
	for rows.Next() {
		var (
			name     sql.NullString
			password sql.NullString
			enabled  sql.NullBool
		)
		dest := make([]any, len(cols))
		dest[0], dest[1], dest[2] = &name, &password, &enabled
		for i := 3; i < len(dest); i++ {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		users = append(users, UserRecord{
			Username: name.String,
			Password: password.String,
			Enabled:  enabled.Bool,
		})
	}
	return users, rows.Err()
}

// loadAuthorities runs an authority query and maps the name column of
// every row, prefixed with the configured role prefix, to an Authority.
// Row order from the store is preserved.
func (r *Resolver) loadAuthorities(
	ctx context.Context,
	query string,
	nameColumn int,
	username string,
) ([]Authority, error) {
	rows, err := r.q.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) <= nameColumn {
		return nil, fmt.Errorf(
			"realm: authority query returned %d columns, authority name expected in column %d",
			len(cols), nameColumn+1)
	}

	var authorities []Authority
	for rows.Next() {
		var name sql.NullString
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = new(any)
		}
		dest[nameColumn] = &name
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		authorities = append(authorities, Authority{Name: r.opts.RolePrefix + name.String})
	}
	return authorities, rows.Err()
}
