package platform

import (
	"math/bits"
	"os"
	"strconv"
	"strings"
)

// readSysfsString returns the trimmed contents of a single-value sysfs or
// procfs attribute.
func readSysfsString(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// readSysfsUint reads an unsigned decimal attribute such as energy_now.
func readSysfsUint(path string) (uint64, bool) {
	s, ok := readSysfsString(path)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// mulDiv returns a*b/d using a 128-bit intermediate product, so battery
// readings in µWh do not overflow when scaled to seconds. It returns 0 when
// d is zero or the quotient does not fit in 64 bits.
func mulDiv(a, b, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}
