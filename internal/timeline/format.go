package timeline

import (
	"fmt"
	"strings"
	"time"
)

// FormatSeconds renders a countdown as "2d 3h 4m 5s". Leading zero units are dropped,
// inner ones are kept so the width only shrinks over time.
func FormatSeconds(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	total := int64(d / time.Second)
	units := []struct {
		suffix string
		size   int64
	}{
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}

	var parts []string
	for _, u := range units {
		n := total / u.size
		total %= u.size
		if n == 0 && len(parts) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d%s", n, u.suffix))
	}
	return strings.Join(parts, " ")
}
