package database

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
)

// Capabilities describes optional schema features detected at startup.
type Capabilities struct {
	// HasVerificationColumns is false when the claims table predates
	// verification_token/expires_at.
	HasVerificationColumns bool
}

var (
	capsOnce sync.Once
	caps     Capabilities
)

// DetectCapabilities inspects the schema behind db.
func DetectCapabilities(db *gorm.DB) Capabilities {
	m := db.Migrator()
	c := Capabilities{
		HasVerificationColumns: m.HasColumn(&models.Claim{}, "verification_token") &&
			m.HasColumn(&models.Claim{}, "expires_at"),
	}
	if !c.HasVerificationColumns {
		log.Warnf("[Database] claims table lacks verification columns; claims will be auto-verified (SchemaDegraded)")
	}
	return c
}

// GetCapabilities probes the global DB once and caches the result.
func GetCapabilities() Capabilities {
	capsOnce.Do(func() {
		caps = DetectCapabilities(GetDB())
	})
	return caps
}

// ResetCapabilities forces the next GetCapabilities call to probe again.
func ResetCapabilities() {
	capsOnce = sync.Once{}
}
