// Package config loads runtime configuration from INVOICER_* environment
// variables through viper. Everything operational has a default; only the
// client id range must be set explicitly, so a misconfigured scheduler run
// fails before billing anyone.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "INVOICER"

type Config struct {
	LowerClientID int
	UpperClientID int

	Net30ClientIDs    []string
	ExcludedCustomers []string

	UploadReports          bool
	CreateInvoices         bool
	UpdateContractCounters bool

	// BillingReferenceDate overrides "today" for the billing period, in
	// "2006-01-02". Empty means use the wall clock.
	BillingReferenceDate string

	BookkeeperEmail string
	SenderEmail     string

	CloudOpsBaseURL string
	TrackerBaseURL  string
	BooksBaseURL    string
	DocsBaseURL     string
	MailBaseURL     string

	TrackerListID string
	BooksRealmID  string
	DocsDriveID   string

	ArchiveBasePath string
	DatabaseURL     string
	SecretsPath     string

	LogLevel string
}

// Load reads the environment. Missing required values are reported here, not
// discovered mid-batch.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	keys := []string{
		"lower_client_id", "upper_client_id",
		"net30_client_ids", "excluded_customers",
		"upload_reports", "create_invoices", "update_contract_counters",
		"billing_reference_date",
		"bookkeeper_email", "sender_email",
		"cloudops_base_url", "tracker_base_url", "books_base_url", "docs_base_url", "mail_base_url",
		"tracker_list_id", "books_realm_id", "docs_drive_id",
		"archive_base_path", "database_url", "secrets_path", "log_level",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("upload_reports", true)
	v.SetDefault("create_invoices", true)
	v.SetDefault("update_contract_counters", true)
	v.SetDefault("cloudops_base_url", "https://cloud.robocorp.com/api/v1")
	v.SetDefault("tracker_base_url", "https://api.clickup.com/api/v2")
	v.SetDefault("books_base_url", "https://quickbooks.api.intuit.com")
	v.SetDefault("archive_base_path", "client-reports")
	v.SetDefault("log_level", "info")

	cfg := Config{
		LowerClientID:          v.GetInt("lower_client_id"),
		UpperClientID:          v.GetInt("upper_client_id"),
		Net30ClientIDs:         splitList(v.GetString("net30_client_ids")),
		ExcludedCustomers:      splitList(v.GetString("excluded_customers")),
		UploadReports:          v.GetBool("upload_reports"),
		CreateInvoices:         v.GetBool("create_invoices"),
		UpdateContractCounters: v.GetBool("update_contract_counters"),
		BillingReferenceDate:   v.GetString("billing_reference_date"),
		BookkeeperEmail:        v.GetString("bookkeeper_email"),
		SenderEmail:            v.GetString("sender_email"),
		CloudOpsBaseURL:        v.GetString("cloudops_base_url"),
		TrackerBaseURL:         v.GetString("tracker_base_url"),
		BooksBaseURL:           v.GetString("books_base_url"),
		DocsBaseURL:            v.GetString("docs_base_url"),
		MailBaseURL:            v.GetString("mail_base_url"),
		TrackerListID:          v.GetString("tracker_list_id"),
		BooksRealmID:           v.GetString("books_realm_id"),
		DocsDriveID:            v.GetString("docs_drive_id"),
		ArchiveBasePath:        v.GetString("archive_base_path"),
		DatabaseURL:            v.GetString("database_url"),
		SecretsPath:            v.GetString("secrets_path"),
		LogLevel:               v.GetString("log_level"),
	}

	if cfg.LowerClientID == 0 || cfg.UpperClientID == 0 {
		return Config{}, errors.New("INVOICER_LOWER_CLIENT_ID and INVOICER_UPPER_CLIENT_ID are required")
	}
	if _, err := cfg.ReferenceDate(time.Now); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ReferenceDate resolves the billing reference: the configured override when
// set, otherwise now().
func (c Config) ReferenceDate(now func() time.Time) (time.Time, error) {
	if c.BillingReferenceDate == "" {
		return now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", c.BillingReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse billing reference date %q: %w", c.BillingReferenceDate, err)
	}
	return t, nil
}

// Net30Set returns the allow-list as a set for membership checks.
func (c Config) Net30Set() map[string]struct{} {
	return toSet(c.Net30ClientIDs)
}

// ExcludedSet returns the excluded customer names as a set.
func (c Config) ExcludedSet() map[string]struct{} {
	return toSet(c.ExcludedCustomers)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// splitList parses a comma-separated env value. Commas, not whitespace:
// excluded customer names contain spaces.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
