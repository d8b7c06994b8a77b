package platform

import (
	"testing"
	"time"
)

const samplePciconf = `hostb0@pci0:0:0:0:	class=0x060000 rev=0x08 hdr=0x00 vendor=0x8086 device=0x5904 subvendor=0x17aa subdevice=0x2247
    vendor     = 'Intel Corporation'
    device     = 'Xeon E3-1200 v6/7th Gen Core Processor Host Bridge/DRAM Registers'
    class      = bridge
vgapci0@pci0:0:2:0:	class=0x030000 rev=0x02 hdr=0x00 vendor=0x8086 device=0x5916 subvendor=0x17aa subdevice=0x2247
    vendor     = 'Intel Corporation'
    device     = 'HD Graphics 620'
    class      = display
    subclass   = VGA
em0@pci0:0:31:6:	class=0x020000 rev=0x21 hdr=0x00 vendor=0x8086 device=0x15d7
    vendor     = 'Intel Corporation'
    device     = 'Ethernet Connection (4) I219-LM'
`

func TestParsePciconfGPU(t *testing.T) {
	got, ok := parsePciconfGPU(samplePciconf)
	if !ok || got != "Intel HD Graphics 620" {
		t.Errorf("parsePciconfGPU() = %q, %v; want Intel HD Graphics 620, true", got, ok)
	}

	if _, ok := parsePciconfGPU("em0@pci0:0:31:6:\tclass=0x020000\n    device = 'NIC'\n"); ok {
		t.Error("parsePciconfGPU(no display) ok = true, want false")
	}
}

func TestAcpiBattery(t *testing.T) {
	tests := []struct {
		name                string
		life, state, minute int32
		wantOK              bool
		wantStatus          BatteryStatus
		wantTime            *time.Duration
	}{
		{"not present", -1, acpiBatteryNotPresent, -1, false, 0, nil},
		{"discharging", 55, acpiBatteryDischarging, 120, true, BatteryDischarging, durationPtr(2 * time.Hour)},
		{"charging", 40, acpiBatteryCharging, 80, true, BatteryCharging, nil},
		{"full", 100, 0, -1, true, BatteryFull, nil},
		{"idle partial", 90, 0, -1, true, BatteryUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := acpiBattery(tt.life, tt.state, tt.minute)
			if ok != tt.wantOK {
				t.Fatalf("acpiBattery() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Percentage == nil || int32(*got.Percentage) != tt.life {
				t.Errorf("Percentage = %v, want %d", got.Percentage, tt.life)
			}
			if !equalDurationPtr(got.TimeRemaining, tt.wantTime) {
				t.Errorf("TimeRemaining = %v, want %v", got.TimeRemaining, tt.wantTime)
			}
		})
	}
}
