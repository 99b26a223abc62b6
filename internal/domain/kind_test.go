package domain

import (
	"testing"
)

func TestParseDeviceKind(t *testing.T) {
	tests := []struct {
		tag  string
		want DeviceKind
		ok   bool
	}{
		{"Router", KindRouter, true},
		{"router", KindRouter, true},
		{`App\Models\Switch`, KindSwitch, true},
		{`Namespace\Sub\Router`, KindRouter, true},
		{"AccessPoint", KindAccessPoint, true},
		{" CPE ", KindCPE, true},
		{"Toaster", "", false},
		{"", "", false},
		{`App\Models\`, "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDeviceKind(tt.tag)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDeviceKind(%q) = (%q, %v), want (%q, %v)", tt.tag, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeviceKindValid(t *testing.T) {
	for _, k := range DeviceKinds() {
		if !k.Valid() {
			t.Errorf("DeviceKind(%s).Valid() = false, want true", k)
		}
	}
	if DeviceKind("router").Valid() {
		t.Error("lowercase kind should not be valid without parsing")
	}
}

func TestParseEnclosureKind(t *testing.T) {
	for _, k := range EnclosureKinds() {
		got, ok := ParseEnclosureKind(`App\Models\` + string(k))
		if !ok || got != k {
			t.Errorf("ParseEnclosureKind(%s) = (%q, %v)", k, got, ok)
		}
	}
	if _, ok := ParseEnclosureKind("Manhole"); ok {
		t.Error("expected Manhole to be rejected")
	}
}

func TestParsePortKind(t *testing.T) {
	if got, ok := ParsePortKind("deviceport"); !ok || got != PortKindDevice {
		t.Errorf("ParsePortKind(deviceport) = (%q, %v)", got, ok)
	}
	if _, ok := ParsePortKind("Splitter"); ok {
		t.Error("expected Splitter to be rejected")
	}
}

func TestCableCoreLabel(t *testing.T) {
	c := CableCore{Number: 3, Color: "Blue"}
	if got := c.Label(); got != "Core 3 (Blue)" {
		t.Errorf("Label() = %q", got)
	}
	c.Color = ""
	if got := c.Label(); got != "Core 3" {
		t.Errorf("Label() = %q", got)
	}
}
