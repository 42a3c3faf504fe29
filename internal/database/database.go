package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	return sqlx.Connect("pgx", dsn)
}

var schema = `
CREATE TABLE IF NOT EXISTS store_status (
	id            BIGSERIAL PRIMARY KEY,
	store_id      VARCHAR(50) NOT NULL,
	timestamp_utc TIMESTAMP   NOT NULL,
	active        BOOLEAN     NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_status_store_ts ON store_status(store_id, timestamp_utc);

CREATE TABLE IF NOT EXISTS business_hours (
	id            BIGSERIAL PRIMARY KEY,
	store_id      VARCHAR(50) NOT NULL,
	day_of_week   INT         NOT NULL,
	start_seconds INT         NOT NULL,
	end_seconds   INT         NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_business_hours_store ON business_hours(store_id);

CREATE TABLE IF NOT EXISTS store_timezone (
	id           BIGSERIAL PRIMARY KEY,
	store_id     VARCHAR(50) NOT NULL UNIQUE,
	timezone_str VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS report (
	id          BIGSERIAL PRIMARY KEY,
	report_id   VARCHAR(36)  NOT NULL UNIQUE,
	status      VARCHAR(20)  NOT NULL,
	report_path VARCHAR(255),
	created_at  TIMESTAMP    NOT NULL DEFAULT now()
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}
