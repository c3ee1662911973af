package timeutil

import (
	"time"
)

// VN is the Vietnam time zone (UTC+7), the zone all lease and billing
// dates are interpreted in.
var VN *time.Location

func init() {
	var err error
	VN, err = time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		VN = time.FixedZone("ICT", 7*60*60) // UTC+7
	}
}

// Now returns the current time in VN.
func Now() time.Time {
	return time.Now().In(VN)
}

// ToVN converts any time to VN.
func ToVN(t time.Time) time.Time {
	return t.In(VN)
}

// ParseDate parses a YYYY-MM-DD string in the VN zone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, VN)
}

// StartOfDay returns 00:00:00 in VN for the given time.
func StartOfDay(t time.Time) time.Time {
	vn := t.In(VN)
	return time.Date(vn.Year(), vn.Month(), vn.Day(), 0, 0, 0, 0, VN)
}

// Common layouts for VN formatting.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02/01/2006"
)
