// Package models defines the default realm schema: users with direct
// authority grants, plus named groups whose authorities apply
// transitively to their members.
package models

// User holds the authentication record for one principal. Password is
// an opaque stored representation; nothing in this repository hashes or
// compares it.
//
// Enabled carries no column default on purpose: a default tag makes
// gorm omit the zero value on insert, which would silently flip a
// disabled account to enabled at creation time.
type User struct {
	Username string `gorm:"primaryKey;size:128"`
	Password string `gorm:"size:512;not null"`
	Enabled  bool   `gorm:"not null"`
}

// UserAuthority is one direct authority grant.
type UserAuthority struct {
	Username  string `gorm:"size:128;not null;uniqueIndex:ix_auth_username"`
	Authority string `gorm:"size:128;not null;uniqueIndex:ix_auth_username"`
}

// TableName keeps the default realm schema's table name.
func (UserAuthority) TableName() string { return "authorities" }

// Group is a named collection of members sharing authority grants.
type Group struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:group_name;size:128;not null"`
}

// GroupMember links a username into a group.
type GroupMember struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	GroupID  int64  `gorm:"not null;index"`
	Username string `gorm:"size:128;not null;index"`
}

// GroupAuthority is one authority granted to every member of a group.
type GroupAuthority struct {
	GroupID   int64  `gorm:"not null;uniqueIndex:ix_group_authority"`
	Authority string `gorm:"size:128;not null;uniqueIndex:ix_group_authority"`
}

// TableName keeps the default schema's table name explicit.
func (GroupAuthority) TableName() string { return "group_authorities" }
