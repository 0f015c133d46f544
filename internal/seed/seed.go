package seed

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/month"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureDemoData seeds a small portfolio for local development: one landlord,
// two units, two tenants and an open tenancy on the first unit. It is a no-op
// when any unit already exists.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&unitdomain.Unit{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()

		landlord := unitdomain.Landlord{
			ID:        node.Generate(),
			Name:      "Demo Landlord",
			Email:     "landlord@example.test",
			City:      "Paris",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&landlord).Error; err != nil {
			return err
		}

		landlordID := landlord.ID
		units := []unitdomain.Unit{
			{
				ID:              node.Generate(),
				Name:            "Demo Unit A",
				Address:         "12 Rue de la Demo",
				PostCode:        "75011",
				City:            "Paris",
				NumberOfRooms:   2,
				RentAmount:      decimal.NewFromInt(1000),
				UtilitiesAmount: decimal.NewFromInt(100),
				LandlordID:      &landlordID,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			{
				ID:              node.Generate(),
				Name:            "Demo Unit B",
				Address:         "14 Rue de la Demo",
				PostCode:        "75011",
				City:            "Paris",
				NumberOfRooms:   3,
				RentAmount:      decimal.NewFromInt(1400),
				UtilitiesAmount: decimal.NewFromInt(150),
				LandlordID:      &landlordID,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
		}
		if err := tx.Create(&units).Error; err != nil {
			return err
		}

		tenants := []tenantdomain.Tenant{
			{
				ID:            node.Generate(),
				Name:          "Demo Tenant One",
				Email:         "tenant.one@example.test",
				DepositAmount: decimal.NewFromInt(1000),
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				ID:            node.Generate(),
				Name:          "Demo Tenant Two",
				Email:         "tenant.two@example.test",
				DepositAmount: decimal.NewFromInt(1400),
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}
		if err := tx.Create(&tenants).Error; err != nil {
			return err
		}

		period := tenancydomain.TenancyPeriod{
			ID:        node.Generate(),
			UnitID:    units[0].ID,
			TenantID:  tenants[0].ID,
			StartDate: time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, time.UTC),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&period).Error; err != nil {
			return err
		}

		// Three settled months so ledgers and overviews have data on first run.
		current := month.FromTime(now)
		for i := 3; i >= 1; i-- {
			m := current
			for j := 0; j < i; j++ {
				m = m.Prev()
			}
			payment := billingdomain.Payment{
				ID:              node.Generate(),
				UnitID:          units[0].ID,
				TenantID:        tenants[0].ID,
				BillingMonth:    m.Time(),
				RentAmount:      units[0].RentAmount,
				UtilitiesAmount: units[0].UtilitiesAmount,
				AmountPaid:      units[0].RentAmount.Add(units[0].UtilitiesAmount),
				PaymentDate:     m.Time().AddDate(0, 0, 3),
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
