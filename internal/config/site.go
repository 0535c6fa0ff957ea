package config

// SiteConfig holds site-specific settings for a single host.
// This allows customizing crawl behavior per site, e.g. authenticated
// crawls behind a session cookie.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgents overrides the User-Agent pool for this site.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// Concurrency overrides the global crawl concurrency for this site.
	// Zero means the global value is used.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// File represents the structure of the .linkpatrol configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hosts (e.g. "example.com" or "example.com:8080").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to every site unless
	// overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// SiteConfigFor returns the merged configuration for a host:
// the defaults, overlaid with the host's entry when one exists.
func (cf *File) SiteConfigFor(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Concurrency > 0 {
		result.Concurrency = siteConfig.Concurrency
	}
	if len(siteConfig.UserAgents) > 0 {
		result.UserAgents = siteConfig.UserAgents
	}
	if len(siteConfig.Headers) > 0 {
		// Clone before merging so the shared defaults map is never mutated.
		merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range siteConfig.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return result
}
