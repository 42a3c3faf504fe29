package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/storewatch/store-uptime-monitor/internal/cloud"
	"github.com/storewatch/store-uptime-monitor/internal/config"
	"github.com/storewatch/store-uptime-monitor/internal/domain"
	"github.com/storewatch/store-uptime-monitor/internal/loader"
	"github.com/storewatch/store-uptime-monitor/internal/repository"
)

// reportStore is the object-storage surface the report pipeline uses;
// satisfied by cloud.S3Client.
type reportStore interface {
	UploadReport(key string, data []byte, contentType string) (string, error)
	PresignedURL(key string) (string, error)
	DownloadReport(key string) ([]byte, error)
	ListReports(prefix string) ([]string, error)
	DeleteReport(key string) error
}

// alerter is the notification surface; satisfied by cloud.SNSClient.
type alerter interface {
	SendReportComplete(reportID string, stores, degraded int) error
	SendStoreDownAlert(storeID string, since time.Time) error
}

type Services struct {
	Repos   *repository.Repos
	Reports *ReportService
	Status  *StatusService
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)

	var store reportStore
	var notify alerter
	if config.UseCloudServices() {
		if c, err := cloud.NewS3Client(config.AWSRegion(), config.S3Bucket()); err != nil {
			log.Warn().Err(err).Msg("s3 unavailable, reports stay local")
		} else {
			store = c
		}
		if arn := config.SNSTopicArn(); arn != "" {
			if c, err := cloud.NewSNSClient(config.AWSRegion(), arn); err != nil {
				log.Warn().Err(err).Msg("sns unavailable, notifications disabled")
			} else {
				notify = c
			}
		}
	}

	return &Services{
		Repos: repos,
		Reports: &ReportService{
			repos:     repos,
			dir:       config.ReportDir(),
			workers:   config.ReportWorkers(),
			defaultTZ: config.DefaultTimezone(),
			s3:        store,
			sns:       notify,
		},
		Status: &StatusService{repos: repos, sns: notify},
	}
}

// StatusService ingests live observations arriving over MQTT.
type StatusService struct {
	repos *repository.Repos
	sns   alerter
}

// FromMQTT parses one stores/status message and stores the observation.
// A reading that switches a store from active to inactive additionally
// raises a store-down alert.
func (s *StatusService) FromMQTT(topic string, payload []byte) error {
	var msg struct {
		StoreID   string `json:"store_id"`
		Timestamp string `json:"timestamp_utc"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode %s payload: %w", topic, err)
	}
	ts, err := loader.ParseTimestamp(msg.Timestamp)
	if err != nil {
		return err
	}
	active, err := loader.ParseStatus(msg.Status)
	if err != nil {
		return err
	}

	var prev *domain.Observation
	if s.sns != nil {
		if prev, err = s.repos.LastObservation(msg.StoreID); err != nil {
			log.Warn().Err(err).Str("store_id", msg.StoreID).Msg("last observation lookup failed")
		}
	}

	o := &domain.Observation{
		StoreID:   msg.StoreID,
		Timestamp: ts,
		Active:    active,
	}
	if err := s.repos.InsertObservation(o); err != nil {
		return err
	}

	if s.sns != nil && downTransition(prev, active) {
		if err := s.sns.SendStoreDownAlert(o.StoreID, o.Timestamp); err != nil {
			log.Warn().Err(err).Str("store_id", o.StoreID).Msg("store down alert failed")
		}
	}
	return nil
}

// downTransition reports whether an inactive reading starts a new outage
// rather than repeating one already alerted.
func downTransition(prev *domain.Observation, active bool) bool {
	if active {
		return false
	}
	return prev == nil || prev.Active
}

// LoadCSVs bulk-loads the three input files, replacing prior contents.
func LoadCSVs(repos *repository.Repos, statusPath, hoursPath, tzPath string) error {
	obs, err := loader.StoreStatus(statusPath)
	if err != nil {
		return err
	}
	if err := repos.ReplaceObservations(obs); err != nil {
		return fmt.Errorf("load store status: %w", err)
	}
	log.Info().Int("rows", len(obs)).Msg("store status loaded")

	rules, err := loader.BusinessHours(hoursPath)
	if err != nil {
		return err
	}
	if err := repos.ReplaceBusinessHours(rules); err != nil {
		return fmt.Errorf("load business hours: %w", err)
	}
	log.Info().Int("rows", len(rules)).Msg("business hours loaded")

	tzs, err := loader.Timezones(tzPath)
	if err != nil {
		return err
	}
	if err := repos.ReplaceTimezones(tzs); err != nil {
		return fmt.Errorf("load timezones: %w", err)
	}
	log.Info().Int("rows", len(tzs)).Msg("timezones loaded")
	return nil
}
