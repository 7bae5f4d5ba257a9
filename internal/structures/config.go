package structures

import "time"

// Deployment modes. A "full" instance carries the admin surface and can
// act as the editor; a "host_only" instance serves redirects, customer
// pages and snapshot pushes but mounts no admin routes.
const (
	ModeFull     = "full"
	ModeHostOnly = "host_only"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Storage struct {
	DBPath              string        `yaml:"dbPath" validate:"required|unixPath"`
	MaintenanceInterval time.Duration `yaml:"maintenanceInterval"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type AdminConfig struct {
	Token string `yaml:"token"`
}

type RedirectConfig struct {
	StaticURL     string `yaml:"staticUrl" validate:"required|fullUrl"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// SyncConfig is only meaningful on the editor side (mode "full"): it names
// the host the qrdsync CLI pushes to. RotateOnPush is a one-shot directive
// carried inside each push, not stored host state.
type SyncConfig struct {
	RemoteBaseURL    string `yaml:"remoteBaseUrl"`
	RemoteAdminToken string `yaml:"remoteAdminToken"`
	RotateOnPush     bool   `yaml:"rotateOnPush"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Mode      string         `yaml:"mode" validate:"required|in:full,host_only"`
	WebServer Server         `yaml:"webServer"`
	Storage   Storage        `yaml:"storage"`
	Admin     AdminConfig    `yaml:"admin"`
	Redirect  RedirectConfig `yaml:"redirect"`
	Sync      SyncConfig     `yaml:"sync"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
