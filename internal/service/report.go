package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
	"github.com/storewatch/store-uptime-monitor/internal/repository"
	"github.com/storewatch/store-uptime-monitor/internal/uptime"
)

// retainedReports caps how many report rows the listing endpoint serves
// and how many uploaded CSVs the retention sweep keeps.
const retainedReports = 50

// ReportService owns the trigger/poll report lifecycle: a trigger
// creates a Running row and generation proceeds in the background, so a
// slow report never blocks the API.
type ReportService struct {
	repos     *repository.Repos
	dir       string
	workers   int
	defaultTZ string
	s3        reportStore
	sns       alerter
}

func reportKey(reportID string) string {
	return "reports/report_" + reportID + ".csv"
}

// Trigger registers a new report and starts generating it.
func (s *ReportService) Trigger() (string, error) {
	reportID := uuid.NewString()
	if err := s.repos.CreateReport(reportID); err != nil {
		return "", fmt.Errorf("create report row: %w", err)
	}
	go func() {
		if err := s.Generate(context.Background(), reportID); err != nil {
			log.Error().Err(err).Str("report_id", reportID).Msg("report generation failed")
			if dberr := s.repos.SetReportStatus(reportID, domain.ReportFailed, ""); dberr != nil {
				log.Error().Err(dberr).Str("report_id", reportID).Msg("failed to mark report failed")
			}
		}
	}()
	return reportID, nil
}

// Generate computes and writes one report end to end. Exported so the
// loader CLI and tests can run it synchronously.
func (s *ReportService) Generate(ctx context.Context, reportID string) error {
	started := time.Now()

	now, err := s.repos.MaxObservationTimestamp()
	if err != nil {
		return fmt.Errorf("reference timestamp: %w", err)
	}

	// Only the trailing week matters for any window; earlier history
	// never changes a result.
	observations, err := s.repos.ObservationsSince(now.Add(-7 * 24 * time.Hour))
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}
	rules, err := s.repos.AllBusinessHours()
	if err != nil {
		return fmt.Errorf("load business hours: %w", err)
	}
	timezones, err := s.repos.AllTimezones()
	if err != nil {
		return fmt.Errorf("load timezones: %w", err)
	}

	rows, err := uptime.ComputeReport(ctx, uptime.Input{
		Now:          now,
		Observations: observations,
		Rules:        rules,
		Timezones:    timezones,
		DefaultTZ:    s.defaultTZ,
		Workers:      s.workers,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	path := filepath.Join(s.dir, "report_"+reportID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.publish(reportID, path, rows)

	if err := s.repos.SetReportStatus(reportID, domain.ReportComplete, path); err != nil {
		return fmt.Errorf("mark report complete: %w", err)
	}
	log.Info().
		Str("report_id", reportID).
		Int("stores", len(rows)).
		Dur("took", time.Since(started)).
		Msg("report generated")
	return nil
}

// publish pushes the finished CSV to S3 and notifies via SNS when cloud
// services are enabled. Failures are logged, never fatal.
func (s *ReportService) publish(reportID, path string, rows []domain.StoreMetrics) {
	degraded := 0
	for _, r := range rows {
		if r.Degraded != "" {
			degraded++
		}
	}

	if s.s3 != nil {
		data, err := os.ReadFile(path)
		if err == nil {
			if _, uerr := s.s3.UploadReport(reportKey(reportID), data, "text/csv"); uerr != nil {
				log.Warn().Err(uerr).Str("report_id", reportID).Msg("s3 upload failed")
			} else {
				log.Info().Str("report_id", reportID).Msg("report uploaded")
				s.pruneCloud()
			}
		}
	}
	if s.sns != nil {
		if err := s.sns.SendReportComplete(reportID, len(rows), degraded); err != nil {
			log.Warn().Err(err).Str("report_id", reportID).Msg("sns notify failed")
		}
	}
}

// pruneCloud deletes uploaded CSVs that no longer back a retained report
// row, so the bucket tracks the listing endpoint.
func (s *ReportService) pruneCloud() {
	keys, err := s.s3.ListReports("reports/")
	if err != nil {
		log.Warn().Err(err).Msg("list uploaded reports failed")
		return
	}
	retained, err := s.repos.ListReports(retainedReports)
	if err != nil {
		log.Warn().Err(err).Msg("list retained reports failed")
		return
	}
	for _, key := range staleReportKeys(keys, retained) {
		if err := s.s3.DeleteReport(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("delete stale report failed")
		}
	}
}

// staleReportKeys returns the uploaded keys with no matching retained
// report row.
func staleReportKeys(keys []string, retained []domain.Report) []string {
	keep := make(map[string]bool, len(retained))
	for _, rep := range retained {
		keep[reportKey(rep.ReportID)] = true
	}
	var stale []string
	for _, key := range keys {
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	return stale
}

// CloudEnabled reports whether finished reports are also stored in S3.
func (s *ReportService) CloudEnabled() bool { return s.s3 != nil }

// CloudURL generates a fresh presigned download link for a finished
// report's uploaded CSV.
func (s *ReportService) CloudURL(reportID string) (string, error) {
	return s.s3.PresignedURL(reportKey(reportID))
}

// CloudFetch downloads a finished report's CSV from S3, covering the
// case where the local file is gone.
func (s *ReportService) CloudFetch(reportID string) ([]byte, error) {
	return s.s3.DownloadReport(reportKey(reportID))
}

// GetReport fetches a report row; nil when unknown.
func (s *ReportService) GetReport(reportID string) (*domain.Report, error) {
	return s.repos.GetReport(reportID)
}

// ListReports returns the most recent report rows.
func (s *ReportService) ListReports() ([]domain.Report, error) {
	return s.repos.ListReports(retainedReports)
}

// WriteCSV serializes report rows in the export column order. Durations
// are written with two decimals, matching the rounding applied by the
// aggregation layer.
func WriteCSV(w io.Writer, rows []domain.StoreMetrics) error {
	cw := csv.NewWriter(w)
	header := []string{
		"store_id",
		"uptime_last_hour",
		"uptime_last_day",
		"uptime_last_week",
		"downtime_last_hour",
		"downtime_last_day",
		"downtime_last_week",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.StoreID,
			f2(r.UptimeLastHour),
			f2(r.UptimeLastDay),
			f2(r.UptimeLastWeek),
			f2(r.DowntimeLastHour),
			f2(r.DowntimeLastDay),
			f2(r.DowntimeLastWeek),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
