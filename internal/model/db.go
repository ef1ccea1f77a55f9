package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Package struct {
	ID           string          `gorm:"primaryKey;size:36;not null" json:"id"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency     string          `gorm:"size:8;not null" json:"currency"`
	BillingCycle BillingCycle    `gorm:"size:16;not null" json:"billing_cycle"`
	Features     Features        `gorm:"type:text" json:"features"`
	IsActive     bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Subscription is a recurring expense tracked by its owner.
type Subscription struct {
	ID              string          `gorm:"primaryKey;size:36;not null" json:"id"`
	OwnerID         string          `gorm:"size:64;index;not null" json:"owner_id"`
	Name            string          `gorm:"size:128;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Provider        string          `gorm:"size:128" json:"provider"`
	WebsiteURL      string          `gorm:"size:255" json:"website_url"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	Currency        string          `gorm:"size:8;not null" json:"currency"`
	BillingCycle    BillingCycle    `gorm:"size:16;not null" json:"billing_cycle"`
	Category        Category        `gorm:"size:32;not null;default:'other'" json:"category"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	AutoRenewal     bool            `gorm:"not null" json:"auto_renewal"`
	NextBillingDate *Date           `gorm:"type:date" json:"next_billing_date"`
	UsageLimit      *float64        `json:"usage_limit"`
	CurrentUsage    *float64        `json:"current_usage"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type SubscriptionPayment struct {
	ID             string          `gorm:"primaryKey;size:36;not null" json:"id"`
	SubscriptionID string          `gorm:"size:36;index;not null" json:"subscription_id"`
	OwnerID        string          `gorm:"size:64;index;not null" json:"owner_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string          `gorm:"size:8;not null" json:"currency"`
	PaymentDate    Date            `gorm:"type:date;not null" json:"payment_date"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CartItem holds a weak reference to a package; Package is nil once the
// package has been deleted.
type CartItem struct {
	ID        string    `gorm:"primaryKey;size:36;not null" json:"id"`
	OwnerID   string    `gorm:"size:64;not null;uniqueIndex:ux_cart_owner_package,priority:1" json:"owner_id"`
	PackageID string    `gorm:"size:36;not null;uniqueIndex:ux_cart_owner_package,priority:2" json:"package_id"`
	Package   *Package  `gorm:"foreignKey:PackageID;references:ID;constraint:false" json:"package,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserSubscription struct {
	ID               string                 `gorm:"primaryKey;size:36;not null" json:"id"`
	OwnerID          string                 `gorm:"size:64;index;not null" json:"owner_id"`
	PackageID        string                 `gorm:"size:36;index;not null" json:"package_id"`
	Package          *Package               `gorm:"foreignKey:PackageID;references:ID;constraint:false" json:"package,omitempty"`
	Status           UserSubscriptionStatus `gorm:"size:16;index;not null" json:"status"`
	StartedAt        time.Time              `gorm:"not null" json:"started_at"`
	ExpiresAt        *time.Time             `json:"expires_at"`
	CreditsRemaining decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0" json:"credits_remaining"`
	TotalPaid        decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0" json:"total_paid"`
	PaymentReference string                 `gorm:"size:64" json:"payment_reference,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type UserRole struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:64;uniqueIndex;not null"`
	Role   Role   `gorm:"size:16;not null;default:'user'"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Package{},
		&Subscription{},
		&SubscriptionPayment{},
		&CartItem{},
		&UserSubscription{},
		&UserRole{},
	}
}
