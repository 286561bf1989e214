package eval

import (
	"strconv"
	"strings"
	"time"
)

// formatDate renders t using the subset of date format tokens listed in
// yyyy, MM, dd, HH, mm, ss, W, q. Any run of characters
// that isn't one of those tokens passes through unchanged, so a format
// string can mix literal punctuation freely (e.g. "yyyy-MM-dd HH:mm").
func formatDate(t time.Time, format string) string {
	var sb strings.Builder
	i := 0
	n := len(format)
	for i < n {
		switch {
		case strings.HasPrefix(format[i:], "yyyy"):
			sb.WriteString(strconv.Itoa(t.Year()))
			i += 4
		case strings.HasPrefix(format[i:], "MM"):
			sb.WriteString(pad2(int(t.Month())))
			i += 2
		case strings.HasPrefix(format[i:], "dd"):
			sb.WriteString(pad2(t.Day()))
			i += 2
		case strings.HasPrefix(format[i:], "HH"):
			sb.WriteString(pad2(t.Hour()))
			i += 2
		case strings.HasPrefix(format[i:], "mm"):
			sb.WriteString(pad2(t.Minute()))
			i += 2
		case strings.HasPrefix(format[i:], "ss"):
			sb.WriteString(pad2(t.Second()))
			i += 2
		case format[i] == 'W':
			_, week := t.ISOWeek()
			sb.WriteString(strconv.Itoa(week))
			i++
		case format[i] == 'q':
			sb.WriteString(strconv.Itoa(quarterOf(t)))
			i++
		default:
			sb.WriteByte(format[i])
			i++
		}
	}
	return sb.String()
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// nowISO8601 formats t as ISO 8601 with a colon-separated UTC offset
// (+HH:MM), the default format for now() with no explicit layout. The
// offset is always rendered as a sign and digits, even at zero offset,
// since Go's "Z07:00" layout verb collapses a zero offset to the
// literal letter "Z" rather than "+00:00".
func nowISO8601(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + formatOffset(t)
}

// formatOffset renders t's zone offset as a sign followed by
// colon-separated zero-padded hours and minutes, e.g. "+00:00" or
// "-05:30".
func formatOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return sign + pad2(hours) + ":" + pad2(minutes)
}

// utcISO8601 formats t (already converted to UTC) with an explicit
// "-00:00" suffix, as the .utc() chain method requires,
// rather than the "Z" suffix Go's RFC3339 layout would produce.
func utcISO8601(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + "-00:00"
}

// applyDuration adds the named duration components to t. Supported keys
// are days, hours, minutes, seconds, weeks.
func applyDuration(t time.Time, key string, n int64) time.Time {
	switch key {
	case "days":
		return t.AddDate(0, 0, int(n))
	case "weeks":
		return t.AddDate(0, 0, int(n)*7)
	case "hours":
		return t.Add(time.Duration(n) * time.Hour)
	case "minutes":
		return t.Add(time.Duration(n) * time.Minute)
	case "seconds":
		return t.Add(time.Duration(n) * time.Second)
	default:
		return t
	}
}
