package config

// Config is the top-level sentinelmind configuration.
type Config struct {
	Server            ServerConfig    `yaml:"server"`
	Entra             EntraConfig     `yaml:"entra"`
	Okta              OktaConfig      `yaml:"okta"`
	Directory         DirectoryConfig `yaml:"directory"`
	Logging           LoggingConfig   `yaml:"logging"`
	AllowWriteActions bool            `yaml:"allowWriteActions"`
}

const (
	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"
	// TransportStreamableHTTP serves MCP over HTTP.
	TransportStreamableHTTP = "streamable-http"
)

// ServerConfig selects the MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // stdio (default) or streamable-http
	Host      string `yaml:"host,omitempty"`      // streamable-http only
	Port      int    `yaml:"port,omitempty"`      // streamable-http only
}

// EntraConfig holds the Microsoft Entra confidential client settings.
type EntraConfig struct {
	TenantID     string `yaml:"tenantId,omitempty"`
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	// AuthorityHost overrides https://login.microsoftonline.com.
	AuthorityHost string `yaml:"authorityHost,omitempty"`
	// GraphBaseURL overrides https://graph.microsoft.com/v1.0.
	GraphBaseURL string `yaml:"graphBaseUrl,omitempty"`
}

// OktaConfig holds the Okta service app settings.
type OktaConfig struct {
	OrgURL         string `yaml:"orgUrl,omitempty"`
	ClientID       string `yaml:"clientId,omitempty"`
	KeyID          string `yaml:"keyId,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	Scopes         string `yaml:"scopes,omitempty"` // space separated
}

// DirectoryConfig tunes outgoing directory API requests.
type DirectoryConfig struct {
	TimeoutSeconds    int     `yaml:"timeoutSeconds,omitempty"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"` // 0 disables pacing
	Burst             int     `yaml:"burst,omitempty"`
}

// LoggingConfig controls the log sink.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `yaml:"maxBackups,omitempty"`
	MaxAgeDays int    `yaml:"maxAgeDays,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// EntraConfigured reports whether any Entra setting is present.
func (c Config) EntraConfigured() bool {
	e := c.Entra
	return e.TenantID != "" || e.ClientID != "" || e.ClientSecret != ""
}

// OktaConfigured reports whether any Okta setting is present.
func (c Config) OktaConfigured() bool {
	o := c.Okta
	return o.OrgURL != "" || o.ClientID != "" || o.KeyID != "" || o.PrivateKeyPath != "" || o.Scopes != ""
}
