package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// MaxObservationTimestamp returns the global reference instant for
// report windows: the latest observation timestamp in the dataset.
func (r *Repos) MaxObservationTimestamp() (time.Time, error) {
	var ts sql.NullTime
	err := r.db.Get(&ts, `SELECT max(timestamp_utc) FROM store_status`)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("no observations loaded")
	}
	return ts.Time.UTC(), nil
}

// ObservationsSince loads all observations at or after since, grouped by
// store and sorted by timestamp within each store.
func (r *Repos) ObservationsSince(since time.Time) (map[string][]domain.Observation, error) {
	var rows []domain.Observation
	err := r.db.Select(&rows, `
		SELECT store_id, timestamp_utc, active FROM store_status
		WHERE timestamp_utc >= $1
		ORDER BY store_id, timestamp_utc, id`, since)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.Observation)
	for _, o := range rows {
		o.Timestamp = o.Timestamp.UTC()
		out[o.StoreID] = append(out[o.StoreID], o)
	}
	return out, nil
}

func (r *Repos) AllBusinessHours() (map[string][]domain.BusinessHoursRule, error) {
	var rows []domain.BusinessHoursRule
	err := r.db.Select(&rows, `
		SELECT store_id, day_of_week, start_seconds, end_seconds
		FROM business_hours ORDER BY store_id, day_of_week, start_seconds`)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.BusinessHoursRule)
	for _, bh := range rows {
		out[bh.StoreID] = append(out[bh.StoreID], bh)
	}
	return out, nil
}

func (r *Repos) AllTimezones() (map[string]string, error) {
	var rows []domain.StoreTimezone
	err := r.db.Select(&rows, `SELECT store_id, timezone_str FROM store_timezone`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, tz := range rows {
		out[tz.StoreID] = tz.TZ
	}
	return out, nil
}

// LastObservation returns the store's most recent observation, or nil
// when the store has never reported.
func (r *Repos) LastObservation(storeID string) (*domain.Observation, error) {
	var o domain.Observation
	err := r.db.Get(&o, `
		SELECT store_id, timestamp_utc, active FROM store_status
		WHERE store_id=$1 ORDER BY timestamp_utc DESC, id DESC LIMIT 1`, storeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Timestamp = o.Timestamp.UTC()
	return &o, nil
}

func (r *Repos) InsertObservation(o *domain.Observation) error {
	_, err := r.db.Exec(`INSERT INTO store_status(store_id, timestamp_utc, active) VALUES ($1,$2,$3)`,
		o.StoreID, o.Timestamp, o.Active)
	return err
}

// ReplaceObservations swaps in a fresh bulk load. The delete+insert runs
// in one transaction so a re-load is idempotent.
func (r *Repos) ReplaceObservations(obs []domain.Observation) error {
	return r.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM store_status`); err != nil {
			return err
		}
		stmt, err := tx.Preparex(`INSERT INTO store_status(store_id, timestamp_utc, active) VALUES ($1,$2,$3)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range obs {
			if _, err := stmt.Exec(obs[i].StoreID, obs[i].Timestamp, obs[i].Active); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repos) ReplaceBusinessHours(rules []domain.BusinessHoursRule) error {
	return r.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM business_hours`); err != nil {
			return err
		}
		stmt, err := tx.Preparex(`INSERT INTO business_hours(store_id, day_of_week, start_seconds, end_seconds) VALUES ($1,$2,$3,$4)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range rules {
			if _, err := stmt.Exec(rules[i].StoreID, rules[i].Day, rules[i].StartLocal, rules[i].EndLocal); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repos) ReplaceTimezones(tzs []domain.StoreTimezone) error {
	return r.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM store_timezone`); err != nil {
			return err
		}
		stmt, err := tx.Preparex(`INSERT INTO store_timezone(store_id, timezone_str) VALUES ($1,$2)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range tzs {
			if _, err := stmt.Exec(tzs[i].StoreID, tzs[i].TZ); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repos) CreateReport(reportID string) error {
	_, err := r.db.Exec(`INSERT INTO report(report_id, status) VALUES ($1,$2)`,
		reportID, domain.ReportRunning)
	return err
}

func (r *Repos) SetReportStatus(reportID, status, path string) error {
	_, err := r.db.Exec(`UPDATE report SET status=$2, report_path=$3 WHERE report_id=$1`,
		reportID, status, path)
	return err
}

func (r *Repos) GetReport(reportID string) (*domain.Report, error) {
	var rep domain.Report
	err := r.db.Get(&rep, `SELECT id, report_id, status, coalesce(report_path,'') AS report_path, created_at FROM report WHERE report_id=$1`, reportID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repos) ListReports(limit int) ([]domain.Report, error) {
	var out []domain.Report
	err := r.db.Select(&out, `SELECT id, report_id, status, coalesce(report_path,'') AS report_path, created_at FROM report ORDER BY id DESC LIMIT $1`, limit)
	return out, err
}

func (r *Repos) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
