package console

import "fmt"

// FormatFileSize formats file sizes in a human-readable way (e.g., "1.2 KB", "3.4 MB")
func FormatFileSize(size int64) string {
	if size == 0 {
		return "0 B"
	}

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB"}
	if exp >= len(units) {
		exp = len(units) - 1
		div = int64(1) << (10 * (exp + 1))
	}

	return fmt.Sprintf("%.1f %s", float64(size)/float64(div), units[exp])
}

// FormatNumber formats large counts in a human-readable way (e.g., "1.00k", "1.20k", "15.0k", "1.12M").
// Used for dependency and primitive counts in summary output.
func FormatNumber(n int) string {
	if n == 0 {
		return "0"
	}

	f := float64(n)

	if f < 1000 {
		return fmt.Sprintf("%d", n)
	} else if f < 1000000 {
		k := f / 1000
		if k >= 100 {
			return fmt.Sprintf("%.0fk", k)
		} else if k >= 10 {
			return fmt.Sprintf("%.1fk", k)
		}
		return fmt.Sprintf("%.2fk", k)
	}

	m := f / 1000000
	if m >= 100 {
		return fmt.Sprintf("%.0fM", m)
	} else if m >= 10 {
		return fmt.Sprintf("%.1fM", m)
	}
	return fmt.Sprintf("%.2fM", m)
}

// FormatNumberOrEmpty formats a number or returns empty string if zero
func FormatNumberOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return FormatNumber(n)
}

// FormatIntOrEmpty formats an int or returns empty string if zero
func FormatIntOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// TruncateString truncates a string to maxLen with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen > 3 {
		return s[:maxLen-3] + "..."
	}
	return s[:maxLen]
}
