package utils

import "time"

type HTTPClientConfig struct {
	ConnectTimeout time.Duration
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	UserAgent      string
	Headers        map[string]string
}

// ProbeJob is one speed test queued for the scheduler.
type ProbeJob struct {
	ID       string
	Preset   string
	URL      string
	SinkPath string
}

type Preset struct {
	Name        string
	URL         string
	NominalSize string
}

type BatchEntry struct {
	Link       string `yaml:"link,omitempty"`
	Preset     string `yaml:"preset,omitempty"`
	OutputPath string `yaml:"op,omitempty"`
}

type BatchFile struct {
	Tests []BatchEntry `yaml:"tests"`
}
