package utils

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// FormatBytes renders a byte count in binary units, matching the MB used for speeds.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", max(n, 0))
	}
	value := float64(n)
	suffix := ""
	for _, s := range []string{"KB", "MB", "GB", "TB"} {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.2f %s", value, suffix)
}

func LookupPreset(name string) (Preset, error) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

// SplitProxyAuth pulls user info out of a proxy URL so it can travel in the
// client config instead of the URL string.
func SplitProxyAuth(proxyURL, username, password string) (string, string, string) {
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.User == nil || username != "" {
		return proxyURL, username, password
	}
	username = parsed.User.Username()
	if p, set := parsed.User.Password(); set {
		password = p
	}
	parsed.User = nil
	return parsed.String(), username, password
}

// BuildJobs turns batch entries into probe jobs, filling IDs and default sink paths.
func BuildJobs(entries []BatchEntry, defaultSink string) ([]ProbeJob, error) {
	var jobs []ProbeJob
	for i, entry := range entries {
		job := ProbeJob{URL: entry.Link, SinkPath: entry.OutputPath}
		switch {
		case entry.Link != "" && entry.Preset != "":
			return nil, fmt.Errorf("entry %d: set either link or preset, not both", i+1)
		case entry.Preset != "":
			p, err := LookupPreset(entry.Preset)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i+1, err)
			}
			job.Preset = p.Name
			job.URL = p.URL
		case entry.Link == "":
			return nil, fmt.Errorf("entry %d: empty link", i+1)
		}
		if job.SinkPath == "" {
			job.SinkPath = defaultSink
		}
		job.ID = uuid.NewString()
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func CleanSink(path string) error {
	if path == "" {
		path = DefaultSinkName
	}
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}
