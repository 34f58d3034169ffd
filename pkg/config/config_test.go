package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreBackend != "postgres" {
		t.Errorf("StoreBackend = %q, want postgres", cfg.StoreBackend)
	}
	if cfg.BusinessHoursStart != 7 || cfg.BusinessHoursEnd != 20 {
		t.Errorf("business hours = [%d, %d), want [7, 20)", cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	}
	if cfg.OverdueVisitSchedule != "0 8 * * *" {
		t.Errorf("OverdueVisitSchedule = %q", cfg.OverdueVisitSchedule)
	}
	if cfg.TaskReminderInterval != time.Minute {
		t.Errorf("TaskReminderInterval = %v, want 1m", cfg.TaskReminderInterval)
	}
	if cfg.SchedulerTimezone == nil {
		t.Fatal("SchedulerTimezone is nil")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PUSH_BACKEND", "SNS")
	t.Setenv("PENDING_ORDER_RECIPIENTS", " ops@example.com, sales@example.com ,")
	t.Setenv("JWT_ACCESS_EXPIRY", "not-a-duration")
	t.Setenv("SCHEDULER_TIMEZONE", "Not/AZone")
	t.Setenv("OVERDUE_NOTIFY_ASSIGNEE", "true")
	t.Setenv("APP_BASE_URL", "https://keeper.example.com/")

	cfg := Load()

	if cfg.PushBackend != "sns" {
		t.Errorf("PushBackend = %q, want sns", cfg.PushBackend)
	}
	if cfg.AppBaseURL != "https://keeper.example.com" {
		t.Errorf("AppBaseURL = %q", cfg.AppBaseURL)
	}
	want := []string{"ops@example.com", "sales@example.com"}
	if !reflect.DeepEqual(cfg.PendingOrderRecipients, want) {
		t.Errorf("PendingOrderRecipients = %v, want %v", cfg.PendingOrderRecipients, want)
	}
	if cfg.JWTAccessExpiry != 24*time.Hour {
		t.Errorf("invalid duration should fall back to 24h, got %v", cfg.JWTAccessExpiry)
	}
	if cfg.SchedulerTimezone != time.UTC {
		t.Errorf("unknown zone should fall back to UTC, got %v", cfg.SchedulerTimezone)
	}
	if !cfg.OverdueNotifyAssignee {
		t.Error("OverdueNotifyAssignee = false, want true")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "OVERDUE_RECIPIENT_EMAIL: field@example.com\nBUSINESS_HOURS_START: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BUSINESS_HOURS_START", "9")

	cfg := Load()

	if cfg.OverdueRecipientEmail != "field@example.com" {
		t.Errorf("OverdueRecipientEmail = %q, want value from file", cfg.OverdueRecipientEmail)
	}
	if cfg.BusinessHoursStart != 9 {
		t.Errorf("environment should win over file, got %d", cfg.BusinessHoursStart)
	}
}
