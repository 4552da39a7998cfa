package mqtt

import (
	"testing"
)

func TestFormatTopic(t *testing.T) {
	tests := []struct {
		prefix string
		suffix string
		want   string
	}{
		{"enocean/", "sensors/living_room", "enocean/sensors/living_room"},
		{"enocean", "sensors/living_room", "enocean/sensors/living_room"},
		{"", "sensors/living_room", "sensors/living_room"},
	}
	for _, tt := range tests {
		c := New(Config{TopicPrefix: tt.prefix}, nil)
		if got := c.formatTopic(tt.suffix); got != tt.want {
			t.Errorf("formatTopic(%q, %q) = %q, want %q", tt.prefix, tt.suffix, got, tt.want)
		}
	}
}

func TestStripPrefixInvertsFormatTopic(t *testing.T) {
	for _, prefix := range []string{"enocean/", "enocean", ""} {
		c := New(Config{TopicPrefix: prefix}, nil)
		topic := "actuators/ceiling_light"
		if got := c.stripPrefix(c.formatTopic(topic)); got != topic {
			t.Errorf("prefix %q: stripPrefix(formatTopic(%q)) = %q", prefix, topic, got)
		}
	}
}

func TestGatewayTopics(t *testing.T) {
	c := New(Config{TopicPrefix: "enocean/"}, nil)
	if got := c.StatusTopic(); got != "enocean/_gateway/status" {
		t.Errorf("StatusTopic = %q", got)
	}
	if got := c.gatewayTopic("teach-in"); got != "enocean/_gateway/teach-in" {
		t.Errorf("teach-in topic = %q", got)
	}
	if got := c.gatewayTopic("learn/set"); got != "enocean/_gateway/learn/set" {
		t.Errorf("learn topic = %q", got)
	}
}

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"ON", true, false},
		{"on", true, false},
		{" 1 ", true, false},
		{"TRUE", true, false},
		{"OFF", false, false},
		{"0", false, false},
		{"false", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		got, err := parseOnOff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOnOff(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseOnOff(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOnOff(t *testing.T) {
	if onOff(true) != "ON" || onOff(false) != "OFF" {
		t.Error("onOff formatting broken")
	}
}

func TestPublishDisabledIsNoOp(t *testing.T) {
	c := New(Config{Enabled: false}, nil)
	if err := c.Start(nil); err != nil {
		t.Fatalf("Start of disabled client failed: %v", err)
	}
	if err := c.PublishReading(Reading{Topic: "x", Values: map[string]interface{}{"TMP": 21.5}}); err != nil {
		t.Errorf("PublishReading on disabled client returned %v", err)
	}
	if err := c.PublishLearnMode(true); err != nil {
		t.Errorf("PublishLearnMode on disabled client returned %v", err)
	}
	c.Stop()
}
