package postgres

import (
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema. Beyond AutoMigrate, a partial unique
// index backs the one-active-connection-record-per-user invariant:
// two racing first connects both pass the existence check, and the
// index is what rejects the second insert.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Credential{},
		&domain.LoginSession{},
		&domain.Privilege{},
		&domain.Task{},
		&domain.ConnectionRecord{},
	)
	if err != nil {
		return err
	}

	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_connection_records_one_active_per_user " +
			"ON connection_records (user_id) WHERE status = 'active'",
	).Error
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Credential: NewCredentialRepository(db),
		Session:    NewSessionRepository(db),
		Privilege:  NewPrivilegeRepository(db),
		Task:       NewTaskRepository(db),
		Connection: NewConnectionRepository(db),
	}
}
