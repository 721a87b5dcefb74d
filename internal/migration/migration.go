package migration

import (
	"errors"

	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
	exchangeratedomain "github.com/viralzap/viralzap/internal/exchangerate/domain"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
	settingsdomain "github.com/viralzap/viralzap/internal/settings/domain"
	walletdomain "github.com/viralzap/viralzap/internal/wallet/domain"
	"gorm.io/gorm"
)

// RunMigrations creates every table the pipeline needs. AutoMigrate keeps
// the schema portable across postgres, mysql and sqlite.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&credentialdomain.Credential{},
		&catalogdomain.Service{},
		&orderdomain.Order{},
		&exchangeratedomain.ExchangeRate{},
		&settingsdomain.Setting{},
		&walletdomain.Wallet{},
		&walletdomain.Transaction{},
	)
}
