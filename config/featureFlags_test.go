package config

import "testing"

func TestSnapshotAt(t *testing.T) {
	t.Setenv("SNAPSHOT_AT", "")
	if got := SnapshotAt(); got != "00:05:00" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("SNAPSHOT_AT", "23:59:00")
	if got := SnapshotAt(); got != "23:59:00" {
		t.Fatalf("SnapshotAt = %q", got)
	}
	t.Setenv("SNAPSHOT_AT", "midnight")
	if got := SnapshotAt(); got != "00:05:00" {
		t.Fatalf("invalid value not ignored: %q", got)
	}
}

func TestSnapshotJobEnabled(t *testing.T) {
	for value, want := range map[string]bool{"": false, "true": true, "1": true, "YES": true, "no": false} {
		t.Setenv("SNAPSHOT_JOB_ENABLED", value)
		if got := SnapshotJobEnabled(); got != want {
			t.Errorf("SNAPSHOT_JOB_ENABLED=%q: %v", value, got)
		}
	}
}

func TestTimezoneAndRegionDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "")
	t.Setenv("DEFAULT_PHONE_REGION", "")
	if Timezone() != "Asia/Yangon" || DefaultPhoneRegion() != "MM" {
		t.Fatalf("defaults = %q %q", Timezone(), DefaultPhoneRegion())
	}
	t.Setenv("DEFAULT_PHONE_REGION", "th")
	if DefaultPhoneRegion() != "TH" {
		t.Fatalf("region = %q", DefaultPhoneRegion())
	}
}

func TestPubSubDisabledWithoutTopic(t *testing.T) {
	t.Setenv("PUBSUB_TOPIC", "")
	if PubSubEnabled() {
		t.Fatal("pubsub enabled without a topic")
	}
}
