package db

import (
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/config"
)

// NewClickHouseConnection opens the job history store, e.g.
// clickhouse://default:@localhost:9000/ficherors?dial_timeout=5s&compress=true
func NewClickHouseConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open("clickhouse", cfg, 3*time.Second)
}
