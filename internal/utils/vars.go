package utils

import (
	"errors"
	"time"
)

const BufferSize = 8192 // bytes per read, also the sampling granularity
const DefaultSinkName = "test_download.bin"
const LogFile = ".speedprobe.log"
const ReportInterval = 500 * time.Millisecond
const DefaultConnectTimeout = 30 * time.Second
const DefaultStallTimeout = 30 * time.Second

const ToolUserAgent = "speedprobe/1.0"

var ErrUnknownPreset = errors.New("unknown preset")

var Presets = []Preset{
	{Name: "light", URL: "https://nbg1-speed.hetzner.com/100MB.bin", NominalSize: "100MB"},
	{Name: "standard", URL: "https://nbg1-speed.hetzner.com/1GB.bin", NominalSize: "1GB"},
	{Name: "heavy", URL: "https://nbg1-speed.hetzner.com/10GB.bin", NominalSize: "10GB"},
}

// Local-only User-Agent list
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	"curl/7.88.1",
	"Wget/1.21.4",
}
