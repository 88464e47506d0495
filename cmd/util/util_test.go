package util

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line %q is longer than %d", line, Wrap)
		}
	}
	if got := WrapString("short text"); got != "short text" {
		t.Errorf("WrapString() = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a:1, ,b:2,")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("SplitList() = %v, want [a:1 b:2]", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Errorf("SplitList(\"\") = %v, want empty", got)
	}
}

func TestConnectorSelection(t *testing.T) {
	defer viper.Reset()

	for _, name := range []string{"tcp", "unix", "tls"} {
		viper.Set("transport", name)
		connector, err := GetServerConnector()
		if err != nil {
			t.Fatalf("GetServerConnector(%s) error: %v", name, err)
		}
		if connector.GetName() != name {
			t.Errorf("GetServerConnector(%s).GetName() = %s", name, connector.GetName())
		}
	}

	viper.Set("transport", "http")
	if _, err := GetServerConnector(); err == nil {
		t.Errorf("GetServerConnector(http) succeeded")
	}
	if _, err := GetClientConnector(GetClientConfig()); err == nil {
		t.Errorf("GetClientConnector(http) succeeded")
	}
}

func TestGetClientConfig(t *testing.T) {
	defer viper.Reset()

	viper.Set("endpoints", "a:1,b:2")
	viper.Set("timeout", 3)
	viper.Set("transport-write-buffer", 2)

	config := GetClientConfig()
	if len(config.Endpoints) != 2 || config.TimeoutSecond != 3 || config.Socket.WriteBufferSize != 2048 {
		t.Errorf("GetClientConfig() = %+v", config)
	}
}
