package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser_ParseUserAgent(t *testing.T) {
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name       string
		userAgent  string
		deviceType string
		browser    string
		os         string
	}{
		{
			name:       "desktop chrome",
			userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			deviceType: "desktop",
			browser:    "Chrome",
			os:         "Windows",
		},
		{
			name:       "iphone safari",
			userAgent:  "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			deviceType: "mobile",
			browser:    "Mobile Safari",
			os:         "iOS",
		},
		{
			name:       "ipad",
			userAgent:  "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			deviceType: "tablet",
			os:         "iOS",
		},
		{
			name:       "googlebot",
			userAgent:  "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			deviceType: "bot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := p.ParseUserAgent(tt.userAgent)
			assert.Equal(t, tt.deviceType, info.DeviceType)
			if tt.browser != "" {
				assert.Equal(t, tt.browser, info.Browser)
			}
			if tt.os != "" {
				assert.Equal(t, tt.os, info.OS)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		info := p.ParseUserAgent("")
		assert.Equal(t, DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}, info)
	})
}

func TestParser_NilSafe(t *testing.T) {
	var p *Parser
	info := p.ParseUserAgent("curl/8.0")
	assert.Equal(t, "unknown", info.DeviceType)
}

func TestNewParser_MissingFile(t *testing.T) {
	p, err := NewParser("missing/regexes.yaml", zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, p)
}
