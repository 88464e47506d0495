package common

import (
	"strings"
	"testing"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"":        logger.INFO,
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for input, expected := range tests {
		got, err := parseLogLevel(input)
		if err != nil || got != expected {
			t.Errorf("parseLogLevel(%q) = %v, %v; want %v", input, got, err, expected)
		}
	}

	if _, err := parseLogLevel("verbose"); err == nil {
		t.Errorf("parseLogLevel(verbose) succeeded")
	}
	if err := InitLoggers("verbose"); err == nil {
		t.Errorf("InitLoggers(verbose) succeeded")
	}
}

func TestLoggerLevel(t *testing.T) {
	l := CreateLogger("test").(*rKVLogger)
	if !l.enabled(logger.INFO) || l.enabled(logger.DEBUG) {
		t.Errorf("new logger does not default to INFO")
	}

	l.SetLevel(logger.ERROR)
	if l.enabled(logger.WARNING) || !l.enabled(logger.ERROR) {
		t.Errorf("SetLevel(ERROR) not applied")
	}
}

func TestInitLoggersIsRepeatable(t *testing.T) {
	for _, level := range []string{"debug", "error", "info"} {
		if err := InitLoggers(level); err != nil {
			t.Fatalf("InitLoggers(%s) error: %v", level, err)
		}
	}
}

func TestServerConfigString(t *testing.T) {
	config := ServerConfig{
		Endpoint:          "0.0.0.0:6379",
		SubscriberBacklog: 16,
		LogLevel:          "debug",
		AOF:               AOFConf{Path: "rkv.aof", Replay: true},
	}
	out := config.String()
	for _, expected := range []string{"0.0.0.0:6379", "rkv.aof", "debug", "16"} {
		if !strings.Contains(out, expected) {
			t.Errorf("String() does not contain %q:\n%s", expected, out)
		}
	}

	config.AOF.Path = ""
	if !strings.Contains(config.String(), "(disabled)") {
		t.Errorf("String() does not report the disabled log")
	}
}

func TestClientAndSentinelConfig(t *testing.T) {
	client := ClientConfig{Endpoints: []string{"a:1", "b:2"}, TimeoutSecond: 3}
	if client.Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %s", client.Timeout())
	}
	if out := client.String(); !strings.Contains(out, "a:1") || !strings.Contains(out, "b:2") {
		t.Errorf("String() misses endpoints:\n%s", out)
	}

	sentinel := SentinelConfig{Primary: "p:1", Replicas: []string{"r:1"}, IntervalMillis: 250, ProbeTimeoutMillis: 100}
	if sentinel.Interval() != 250*time.Millisecond || sentinel.ProbeTimeout() != 100*time.Millisecond {
		t.Errorf("Interval() = %s, ProbeTimeout() = %s", sentinel.Interval(), sentinel.ProbeTimeout())
	}
	if out := sentinel.String(); !strings.Contains(out, "p:1") || !strings.Contains(out, "r:1") {
		t.Errorf("String() misses addresses:\n%s", out)
	}
}
