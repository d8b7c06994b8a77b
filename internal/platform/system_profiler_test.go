package platform

import "testing"

const sampleSPDisplays = `{
  "SPDisplaysDataType": [
    {
      "_name": "Apple M2 Pro",
      "sppci_model": "Apple M2 Pro",
      "spdisplays_ndrvs": [
        {
          "_name": "Color LCD",
          "_spdisplays_displayID": "1",
          "_spdisplays_pixels": "3024 x 1964",
          "_spdisplays_resolution": "1512 x 982 @ 120.00Hz",
          "spdisplays_main": "spdisplays_yes",
          "spdisplays_online": "spdisplays_yes"
        },
        {
          "_name": "DELL U2720Q",
          "_spdisplays_displayID": "4280a6c",
          "_spdisplays_resolution": "3840 x 2160 @ 60.00Hz"
        },
        {
          "_name": "Projector",
          "_spdisplays_displayID": "7",
          "_spdisplays_pixels": "1920 x 1080"
        },
        {
          "_name": "Sidecar",
          "_spdisplays_resolution": "2732 x 2048",
          "spdisplays_online": "spdisplays_no"
        }
      ]
    }
  ]
}`

func TestParseSPDisplays(t *testing.T) {
	report, err := parseSPDisplays([]byte(sampleSPDisplays))
	if err != nil {
		t.Fatalf("parseSPDisplays() error = %v", err)
	}

	if gpu, ok := report.gpuModel(); !ok || gpu != "Apple M2 Pro" {
		t.Errorf("gpuModel() = %q, %v; want Apple M2 Pro, true", gpu, ok)
	}

	outputs := report.outputs()
	if len(outputs) != 2 {
		t.Fatalf("outputs() = %d, want 2: %+v", len(outputs), outputs)
	}
	builtin := outputs[0]
	if builtin.Width != 1512 || builtin.Height != 982 || builtin.RefreshRate != 120 || !builtin.IsPrimary || builtin.ID != 1 {
		t.Errorf("built-in display = %+v", builtin)
	}
	external := outputs[1]
	if external.Width != 3840 || external.IsPrimary || external.ID != 0x4280a6c {
		t.Errorf("external display = %+v", external)
	}

	primaries := 0
	for _, o := range outputs {
		if o.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Errorf("primary outputs = %d, want 1", primaries)
	}
}

func TestParseSPDisplays_Invalid(t *testing.T) {
	if _, err := parseSPDisplays([]byte("not json")); err == nil {
		t.Error("parseSPDisplays() error = nil, want error")
	}

	report, err := parseSPDisplays([]byte(`{"SPDisplaysDataType": []}`))
	if err != nil {
		t.Fatalf("parseSPDisplays(empty) error = %v", err)
	}
	if _, ok := report.gpuModel(); ok {
		t.Error("gpuModel() ok = true for empty report")
	}
	if len(report.outputs()) != 0 {
		t.Error("outputs() not empty for empty report")
	}
}

func TestMacOSName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"14.2.1", "macOS Sonoma"},
		{"15.0", "macOS Sequoia"},
		{"10.15.7", "macOS Catalina"},
		{"10.9", "macOS"},
		{"99.0", "macOS"},
	}
	for _, tt := range tests {
		if got := macOSName(tt.in); got != tt.want {
			t.Errorf("macOSName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenRefreshRate(t *testing.T) {
	tests := []struct {
		name        string
		resolutions []string
		want        float64
		wantOK      bool
	}{
		{"first field", []string{"1512 x 982 @ 120.00Hz", "", ""}, 120, true},
		{"legacy field", []string{"", "2560 x 1440 @ 59.95 Hz", "5120 x 2880"}, 59.95, true},
		{"no rate", []string{"", "", "1920 x 1080"}, 0, false},
		{"zero rate", []string{"1920 x 1080 @ 0.00Hz"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := screenRefreshRate(tt.resolutions...)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("screenRefreshRate() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
