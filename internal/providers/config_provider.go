package providers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"qrd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	// Hard external contracts: these envs must win over the file.
	viper.BindEnv("mode", "QR_APP_MODE")
	viper.BindEnv("storage.dbPath", "QR_DB_PATH")
	viper.BindEnv("admin.token", "ADMIN_TOKEN")
	viper.BindEnv("redirect.staticUrl", "QR_STATIC_REDIRECT_URL")
	viper.BindEnv("logger.level", "QRD_LOG_LEVEL")
	viper.BindEnv("cache.enabled", "QRD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "QRD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	// A host without an admin credential is unreachable for its editor.
	// Generate one and write it back so it survives restarts, same as the
	// config file bootstrap the editor side expects.
	if strings.TrimSpace(conf.Admin.Token) == "" {
		tok, err := generateAdminToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate admin token: %w", err)
		}
		conf.Admin.Token = tok
		viper.Set("admin.token", tok)
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to persist generated admin token: %w", err)
		}
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "QrRedirectDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// generateAdminToken mints a url-safe bearer credential. Padding is stripped
// because the token travels in URL query strings and some QR/share tooling
// drops trailing '='.
func generateAdminToken() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}
