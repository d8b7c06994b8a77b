package platform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// spDisplaysReport is the subset of `system_profiler SPDisplaysDataType -json`
// output used for GPU and display detection on macOS.
type spDisplaysReport struct {
	Displays []struct {
		Name    string `json:"_name"`
		Model   string `json:"sppci_model"`
		Screens []struct {
			Name       string `json:"_name"`
			DisplayID  string `json:"_spdisplays_displayID"`
			Resolution string `json:"_spdisplays_resolution"`
			LegacyRes  string `json:"spdisplays_resolution"`
			Pixels     string `json:"_spdisplays_pixels"`
			Main       string `json:"spdisplays_main"`
			Online     string `json:"spdisplays_online"`
		} `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

var resolutionPattern = regexp.MustCompile(`(\d+)\s*x\s*(\d+)(?:\s*@\s*([\d.]+)\s*Hz)?`)

func parseSPDisplays(data []byte) (spDisplaysReport, error) {
	var report spDisplaysReport
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("decoding system_profiler output: %w", err)
	}
	return report, nil
}

// gpuModel returns the first graphics adapter model.
func (r spDisplaysReport) gpuModel() (string, bool) {
	for _, d := range r.Displays {
		if model := firstNonEmpty(d.Model, d.Name); model != "" {
			return model, true
		}
	}
	return "", false
}

// outputs returns the attached screens. The screen flagged spdisplays_main
// is the primary one.
func (r spDisplaysReport) outputs() []Output {
	var outputs []Output
	for _, d := range r.Displays {
		for _, s := range d.Screens {
			if s.Online == "spdisplays_no" {
				continue
			}
			m := resolutionPattern.FindStringSubmatch(firstNonEmpty(s.Resolution, s.LegacyRes, s.Pixels))
			if m == nil {
				continue
			}
			width, _ := strconv.ParseUint(m[1], 10, 32)
			height, _ := strconv.ParseUint(m[2], 10, 32)
			refresh, ok := screenRefreshRate(s.Resolution, s.LegacyRes, s.Pixels)
			if !ok {
				continue
			}

			id, err := strconv.ParseUint(strings.TrimSpace(s.DisplayID), 10, 64)
			if err != nil {
				id, err = strconv.ParseUint(strings.TrimSpace(s.DisplayID), 16, 64)
				if err != nil {
					id = uint64(len(outputs))
				}
			}

			outputs = append(outputs, Output{
				ID:          id,
				Width:       uint(width),
				Height:      uint(height),
				RefreshRate: refresh,
				IsPrimary:   s.Main == "spdisplays_yes",
			})
		}
	}
	return outputs
}

// screenRefreshRate returns the first positive "@ N Hz" rate among the
// resolution strings of one screen.
func screenRefreshRate(resolutions ...string) (float64, bool) {
	for _, r := range resolutions {
		m := resolutionPattern.FindStringSubmatch(r)
		if m == nil || m[3] == "" {
			continue
		}
		if hz, err := strconv.ParseFloat(m[3], 64); err == nil && hz > 0 {
			return hz, true
		}
	}
	return 0, false
}

// macOSName returns the marketing name for a macOS product version such as
// "14.2.1".
func macOSName(version string) string {
	major, rest, _ := strings.Cut(version, ".")
	minor, _, _ := strings.Cut(rest, ".")

	names := map[string]string{
		"11": "Big Sur",
		"12": "Monterey",
		"13": "Ventura",
		"14": "Sonoma",
		"15": "Sequoia",
		"26": "Tahoe",
	}
	if major == "10" {
		names = map[string]string{
			"13": "High Sierra",
			"14": "Mojave",
			"15": "Catalina",
		}
		major = minor
	}
	if codename, ok := names[major]; ok {
		return "macOS " + codename
	}
	return "macOS"
}
