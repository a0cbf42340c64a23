package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/clipscribe/errors"
)

const blockSeparator = "\n\n"

// Timestamp renders d as HH:MM:SS, truncating fractional seconds.
// Hours are not capped at 24.
func Timestamp(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Format renders t as numbered blocks:
//
//	1. [00:00:00 - 00:00:04]
//	Hello there.
//
// Blocks are separated by a blank line and the output has no trailing newline.
func Format(t *Transcript) (string, error) {
	if t.Empty() {
		return "", nil
	}
	var b strings.Builder
	for i, seg := range t.Segments {
		if seg.Start < 0 || seg.End < 0 {
			return "", errors.Format(fmt.Sprintf("segment %d has a negative timestamp", i+1))
		}
		if seg.End < seg.Start {
			return "", errors.Format(fmt.Sprintf("segment %d ends before it starts", i+1))
		}
		if i > 0 {
			b.WriteString(blockSeparator)
		}
		fmt.Fprintf(&b, "%d. [%s - %s]\n%s", i+1, Timestamp(seg.Start), Timestamp(seg.End), seg.Text)
	}
	return b.String(), nil
}

var headerPattern = regexp.MustCompile(`^(\d+)\. \[(\d{2,}):([0-5]\d):([0-5]\d) - (\d{2,}):([0-5]\d):([0-5]\d)\]$`)

// Parse reads text produced by Format back into segments. Block numbers are
// not checked; timestamps come back at whole-second precision.
func Parse(s string) ([]Segment, error) {
	if s == "" {
		return nil, nil
	}
	var (
		segments []Segment
		body     []string
		current  *Segment
	)
	flush := func() {
		if current == nil {
			return
		}
		// the blank line before the next header belongs to the separator
		if n := len(body); n > 0 && body[n-1] == "" {
			body = body[:n-1]
		}
		current.Text = strings.Join(body, "\n")
		segments = append(segments, *current)
		body = nil
	}

	for n, line := range strings.Split(s, "\n") {
		m := headerPattern.FindStringSubmatch(line)
		if m == nil {
			if current == nil {
				return nil, errors.Format(fmt.Sprintf("line %d: expected block header, got %q", n+1, line))
			}
			body = append(body, line)
			continue
		}
		flush()
		current = &Segment{Start: hms(m[2], m[3], m[4]), End: hms(m[5], m[6], m[7])}
	}
	flush()
	return segments, nil
}

func hms(h, m, s string) time.Duration {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}
