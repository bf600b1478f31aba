package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module runs migrations during fx startup. Only the migrate command pulls
// this in; the serve path relies on the bootstrap schema gate instead.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
