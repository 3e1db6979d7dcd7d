package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go out as JSON numbers, the shape the dashboard expects.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusConfirmed OrderStatus = "confirmed"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Statuses lists every valid status in display order.
var Statuses = []OrderStatus{StatusConfirmed, StatusDelivered, StatusCancelled}

var statusAliases = map[string]OrderStatus{
	"confirmed": StatusConfirmed,
	"delivered": StatusDelivered,
	"cancelled": StatusCancelled,
	"confirmee": StatusConfirmed,
	"confirmée": StatusConfirmed,
	"livree":    StatusDelivered,
	"livrée":    StatusDelivered,
	"annulee":   StatusCancelled,
	"annulée":   StatusCancelled,
}

// ParseStatus maps a wire value, including the legacy French spellings, to
// an OrderStatus.
func ParseStatus(s string) (OrderStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Order is one customer purchase.
type Order struct {
	ID          uint            `gorm:"primaryKey"                                                                       json:"id"`
	Nom         string          `gorm:"size:255;not null"                                                                json:"nom"`
	Prenom      string          `gorm:"size:255;not null"                                                                json:"prenom"`
	Wilaya      string          `gorm:"size:100;not null;index"                                                          json:"wilaya"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;check:chk_commandes_total,total >= 0"      json:"total"`
	Quantite    int             `gorm:"not null;default:0;check:chk_commandes_quantite,quantite >= 0"                   json:"quantite"`
	Description *string         `gorm:"type:text"                                                                        json:"description"`
	Obs         *string         `gorm:"type:text"                                                                        json:"obs"`
	Status      OrderStatus     `gorm:"size:20;not null;default:confirmed;index;check:chk_commandes_status,status IN ('confirmed','delivered','cancelled')" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;index"                                                                   json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null"                                                                         json:"updated_at"`

	Images []OrderImage `gorm:"foreignKey:CommandeID;constraint:OnDelete:CASCADE" json:"images"`
}

func (Order) TableName() string { return "commandes" }

// OrderImage is one uploaded picture attached to an order.
type OrderImage struct {
	ID         uint   `gorm:"primaryKey"                        json:"id"`
	CommandeID uint   `gorm:"not null;index"                    json:"commande_id"`
	URL        string `gorm:"column:image_url;size:500;not null" json:"url"`
	Name       string `gorm:"column:image_name;size:255;not null" json:"name"`
}

func (OrderImage) TableName() string { return "commande_images" }
