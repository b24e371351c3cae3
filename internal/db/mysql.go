package db

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/config"
)

// NewMySQLConnection opens the jobs/outbox store.
// The DSN needs parseTime=true so DATETIME columns scan into time.Time.
func NewMySQLConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open("mysql", cfg, 5*time.Second)
}
