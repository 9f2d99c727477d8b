package config

import (
	"os"
	"strings"
	"time"
)

func envTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SnapshotJobEnabled turns on the in-process daily stock snapshot scheduler.
// Off by default so that only one replica runs it; set SNAPSHOT_JOB_ENABLED=true on that one.
func SnapshotJobEnabled() bool {
	return envTrue("SNAPSHOT_JOB_ENABLED")
}

// SnapshotAt is the wall-clock time (HH:MM:SS) the daily snapshot runs at.
func SnapshotAt() string {
	v := strings.TrimSpace(os.Getenv("SNAPSHOT_AT"))
	if _, err := time.Parse("15:04:05", v); err != nil {
		return "00:05:00"
	}
	return v
}

// PubSubEnabled reports whether status change events should be published.
func PubSubEnabled() bool {
	return strings.TrimSpace(os.Getenv("PUBSUB_TOPIC")) != "" && getPubSubProjectID() != ""
}

// Timezone used to decide what "today" means for snapshots and voucher dates.
func Timezone() string {
	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		return v
	}
	return "Asia/Yangon"
}

// DefaultPhoneRegion is the region libphonenumber assumes for numbers without a country code.
func DefaultPhoneRegion() string {
	if v := strings.TrimSpace(os.Getenv("DEFAULT_PHONE_REGION")); v != "" {
		return strings.ToUpper(v)
	}
	return "MM"
}
