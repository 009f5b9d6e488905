package models

import "github.com/google/uuid"

// newID returns the value for a char(36) primary key when the caller left it empty.
func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// All returns every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Profile{},
		&Listing{},
		&Claim{},
		&Subscription{},
		&Review{},
		&BlogPost{},
		&BillingWebhookEvent{},
	}
}
