package device

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"
)

const (
	adMinWidth  = 50
	adMinHeight = 50
	adMaxHeight = 200
	adMargin    = 20
)

// Info describes the device the feed is rendered on.
type Info struct {
	OS           string
	OSVersion    int
	Make         string
	Model        string
	ScreenWidth  int
	ScreenHeight int
	PixelRatio   int
	Language     string
	IFA          string
}

// InfoFromUserAgent fills OS, OS version, make and model from a browser
// user agent string. Screen metrics are left for the caller.
func InfoFromUserAgent(ua string) Info {
	info := Info{Language: "EN"}
	if strings.TrimSpace(ua) == "" {
		return info
	}

	parsed := user_agent.New(ua)
	osInfo := parsed.OSInfo()

	platform := strings.ToLower(parsed.Platform())

	switch name := strings.ToLower(osInfo.Name); {
	case platform == "ipad":
		info.OS, info.Make, info.Model = "ios", "apple", "ipad"
	case strings.Contains(name, "iphone"), strings.Contains(name, "ios"):
		info.OS, info.Make, info.Model = "ios", "apple", "iphone"
	case strings.Contains(name, "android"):
		info.OS, info.Model = "android", parsed.Model()
	case strings.Contains(name, "mac os"):
		info.OS, info.Make, info.Model = "macos", "apple", "mac"
	case strings.Contains(name, "windows"):
		info.OS = "windows"
	case strings.Contains(name, "linux"):
		info.OS = "linux"
	default:
		info.OS = platform
	}

	info.OSVersion = majorVersion(osInfo.Version)
	return info
}

func majorVersion(v string) int {
	v = strings.NewReplacer("_", ".").Replace(v)
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// AdParameters produces the ad-* parameters sent with every request. It
// implements apiclient.AdParameterSource.
type AdParameters struct {
	info Info
}

// NewAdParameters builds a parameter source for info. A missing IFA is
// replaced by a random one that stays fixed for the source's lifetime.
func NewAdParameters(info Info) *AdParameters {
	if info.IFA == "" {
		info.IFA = uuid.NewString()
	}
	if info.Language == "" {
		info.Language = "EN"
	}
	return &AdParameters{info: info}
}

// Info returns the device description backing the parameters.
func (a *AdParameters) Info() Info {
	return a.info
}

// AdParameters returns a fresh map on every call.
func (a *AdParameters) AdParameters(context.Context) map[string]any {
	info := a.info
	params := map[string]any{
		"ad-os":         info.OS,
		"ad-osv":        info.OSVersion,
		"ad-make":       info.Make,
		"ad-model":      info.Model,
		"ad-min-width":  adMinWidth,
		"ad-min-height": adMinHeight,
		"ad-max-height": adMaxHeight,
		"ad-ifa":        info.IFA,
		"ad-language":   info.Language,
	}
	// Unknown screen metrics are left out rather than sent as zero.
	if info.ScreenWidth > 0 {
		params["ad-device-w"] = info.ScreenWidth
	}
	if info.ScreenHeight > 0 {
		params["ad-device-h"] = info.ScreenHeight
	}
	if info.PixelRatio > 0 {
		params["ad-pxratio"] = info.PixelRatio
	}
	if maxWidth := info.ScreenWidth - adMargin; maxWidth > 0 {
		params["ad-max-width"] = maxWidth
	}
	return params
}
