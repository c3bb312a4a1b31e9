// Package testdb opens per-test SQLite databases with the application schema
// and seeds the rows most ledger tests need.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
)

// Open returns an in-memory database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, migrate.ApplySQLiteSchema(conn))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func Client(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	phone := "11999990000"
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Phone:        &phone,
		Role:         enums.UserRoleClient,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// Tier is one seeded price row.
type Tier struct {
	PlanName   string
	Sessions   int
	PerSession int64
	Total      int64
}

// DrenagemTiers mirrors the seeded catalogue for drenagem-linfatica.
var DrenagemTiers = []Tier{
	{PlanName: "Avulsa", Sessions: 1, PerSession: 18000, Total: 18000},
	{PlanName: "Essencial", Sessions: 5, PerSession: 15000, Total: 75000},
	{PlanName: "Premium", Sessions: 10, PerSession: 13000, Total: 130000},
}

func Service(t *testing.T, conn *gorm.DB, slug string, tiers ...Tier) *models.Service {
	t.Helper()
	svc := &models.Service{ID: uuid.New(), Slug: slug, Name: slug, DurationMinutes: 60, Active: true}
	require.NoError(t, conn.Create(svc).Error)
	for _, tier := range tiers {
		price := models.ServicePrice{
			ID:                   uuid.New(),
			ServiceID:            svc.ID,
			PlanName:             tier.PlanName,
			Sessions:             tier.Sessions,
			PricePerSessionCents: tier.PerSession,
			TotalCents:           tier.Total,
		}
		require.NoError(t, conn.Create(&price).Error)
		svc.Prices = append(svc.Prices, price)
	}
	return svc
}

func Partner(t *testing.T, conn *gorm.DB, name string, pct string) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		ID:            uuid.New(),
		Name:          name,
		CommissionPct: decimal.RequireFromString(pct),
		Active:        true,
	}
	require.NoError(t, conn.Create(partner).Error)
	return partner
}

func Plan(t *testing.T, conn *gorm.DB, clientID, serviceID uuid.UUID, name string, total int) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		ID:            uuid.New(),
		ClientID:      clientID,
		ServiceID:     serviceID,
		PlanName:      name,
		TotalSessions: total,
		Status:        enums.PlanStatusActive,
		CreatedBy:     enums.PlanCreatorAdmin,
	}
	require.NoError(t, conn.Create(plan).Error)
	return plan
}
