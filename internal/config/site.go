package config

import (
	"net"
	"strings"
)

// SiteConfig holds settings for requests to one host.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// PageBudget overrides the global page budget when the search starts on
	// this site. If zero, the global PageBudget is used.
	PageBudget int `yaml:"pageBudget,omitempty"`
}

// File represents the structure of the .wordcrawl configuration file.
type File struct {
	// Sites maps host names to their site-specific settings.
	// Keys are host names without scheme (e.g., "example.com"). A key with a
	// port ("localhost:8080") only matches that port.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host.
// It merges the site-specific configuration with defaults. host may carry a
// port; an entry for "host:port" wins over an entry for the bare host name.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	host = strings.ToLower(strings.TrimSpace(host))

	if site, ok := cf.lookup(host); ok {
		return mergeSiteConfig(cf.Defaults, site)
	}
	if name, _, err := net.SplitHostPort(host); err == nil {
		if site, ok := cf.lookup(name); ok {
			return mergeSiteConfig(cf.Defaults, site)
		}
	}

	return mergeSiteConfig(cf.Defaults, SiteConfig{})
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	for key, site := range cf.Sites {
		if strings.EqualFold(key, host) {
			return site, true
		}
	}
	return SiteConfig{}, false
}

// mergeSiteConfig overlays override on base. The returned Headers map is a
// fresh copy, so callers may modify it without touching the loaded file.
func mergeSiteConfig(base, override SiteConfig) SiteConfig {
	result := base
	result.Headers = make(map[string]string, len(base.Headers)+len(override.Headers))
	for k, v := range base.Headers {
		result.Headers[k] = v
	}

	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.PageBudget > 0 {
		result.PageBudget = override.PageBudget
	}
	for k, v := range override.Headers {
		result.Headers[k] = v
	}

	return result
}
