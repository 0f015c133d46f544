package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Landlord owns one or more units.
type Landlord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	PhoneNumber string       `gorm:"type:text" json:"phone_number"`
	Email       string       `gorm:"type:text;not null" json:"email"`
	Address     string       `gorm:"type:text" json:"address"`
	PostCode    string       `gorm:"type:text" json:"post_code"`
	City        string       `gorm:"type:text" json:"city"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Landlord) TableName() string { return "landlords" }

// BuildingManager administers a building on behalf of landlords.
type BuildingManager struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	PhoneNumber string       `gorm:"type:text" json:"phone_number"`
	Email       string       `gorm:"type:text;not null" json:"email"`
	Address     string       `gorm:"type:text" json:"address"`
	PostCode    string       `gorm:"type:text" json:"post_code"`
	City        string       `gorm:"type:text" json:"city"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BuildingManager) TableName() string { return "building_managers" }

// Unit is a rentable residential unit. RentAmount and UtilitiesAmount are the
// current base rates; months with a recorded payment keep their historical
// rates on the payment row.
type Unit struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:text;not null" json:"name"`
	Address         string          `gorm:"type:text;not null" json:"address"`
	PostCode        string          `gorm:"type:text" json:"post_code"`
	City            string          `gorm:"type:text" json:"city"`
	NumberOfRooms   int             `gorm:"not null;default:1" json:"number_of_rooms"`
	RentAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"utilities_amount"`
	LandlordID      *snowflake.ID   `gorm:"index" json:"landlord_id,omitempty"`
	ManagerID       *snowflake.ID   `gorm:"index" json:"manager_id,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Unit) TableName() string { return "units" }
