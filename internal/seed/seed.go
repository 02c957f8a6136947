// Package seed bootstraps first-run data for self-hosted deployments.
package seed

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admindomain "github.com/lodgeops/lodgeops/internal/admin/domain"
	"github.com/lodgeops/lodgeops/internal/config"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureDefaultAdmin creates the bootstrap admin account when configured
// and absent. Running it repeatedly is a no-op.
func EnsureDefaultAdmin(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	var count int64
	if err := conn.Model(&admindomain.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return conn.Create(&admindomain.Admin{
		ID:           genID.Generate(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}
