// Package store is the gorm-backed persistence layer for the default
// realm schema. It implements the query-executor capability consumed by
// internal/realm and carries the management helpers used for
// provisioning users, grants and groups.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/dbrealm/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AdminAuthority is granted to the seeded bootstrap user.
const AdminAuthority = "ROLE_ADMIN"

type Store struct {
	db *gorm.DB
}

// New opens the database, migrates the realm schema and, when seedAdmin
// is set and the users table is empty, bootstraps an enabled admin user
// with a random bcrypt-hashed password and the AdminAuthority grant.
func New(driver, dsn string, seedAdmin bool) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserAuthority{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupAuthority{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	if seedAdmin {
		if err := store.seedAdmin(); err != nil {
			log.Printf("Warning: failed to seed admin user: %v", err)
		}
	}

	return store, nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

func (s *Store) seedAdmin() error {
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	password, err := generateRandomPassword(16)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Username: "admin",
			Password: string(hash),
			Enabled:  true,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		grant := &models.UserAuthority{Username: "admin", Authority: AdminAuthority}
		if err := tx.Create(grant).Error; err != nil {
			return err
		}
		log.Printf("Created default user: admin / %s (authority: %s)", password, AdminAuthority)
		return nil
	})
}

// Query runs a parameterized query and returns the raw rows. It
// satisfies realm.Queryer; placeholder rebinding for the configured
// dialect is handled by gorm.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.WithContext(ctx).Raw(query, args...).Rows()
}

// User operations

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user record. The password value is stored
// verbatim; callers decide its representation.
func (s *Store) CreateUser(user *models.User) error {
	var existing models.User
	err := s.db.Where("username = ?", user.Username).First(&existing).Error
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return s.db.Create(user).Error
}

func (s *Store) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

// DeleteUser removes the user together with its direct grants and group
// memberships.
func (s *Store) DeleteUser(username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).
			Delete(&models.UserAuthority{}).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", username).
			Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "username = ?", username).Error
	})
}

// Authority operations

func (s *Store) GrantAuthority(username, authority string) error {
	return s.db.Create(&models.UserAuthority{
		Username:  username,
		Authority: authority,
	}).Error
}

func (s *Store) RevokeAuthority(username, authority string) error {
	return s.db.Where("username = ? AND authority = ?", username, authority).
		Delete(&models.UserAuthority{}).Error
}

func (s *Store) GetAuthoritiesByUsername(username string) ([]models.UserAuthority, error) {
	var grants []models.UserAuthority
	err := s.db.Where("username = ?", username).Find(&grants).Error
	return grants, err
}

// Group operations

func (s *Store) CreateGroup(name string) (*models.Group, error) {
	group := &models.Group{Name: name}
	if err := s.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Store) GetGroupByName(name string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("group_name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *Store) DeleteGroup(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).
			Delete(&models.GroupAuthority{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).
			Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, id).Error
	})
}

func (s *Store) AddGroupMember(groupID int64, username string) error {
	return s.db.Create(&models.GroupMember{
		GroupID:  groupID,
		Username: username,
	}).Error
}

func (s *Store) RemoveGroupMember(groupID int64, username string) error {
	return s.db.Where("group_id = ? AND username = ?", groupID, username).
		Delete(&models.GroupMember{}).Error
}

func (s *Store) GrantGroupAuthority(groupID int64, authority string) error {
	return s.db.Create(&models.GroupAuthority{
		GroupID:   groupID,
		Authority: authority,
	}).Error
}

func (s *Store) RevokeGroupAuthority(groupID int64, authority string) error {
	return s.db.Where("group_id = ? AND authority = ?", groupID, authority).
		Delete(&models.GroupAuthority{}).Error
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}
