package conf

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

/* ========================================================================
 * Config Loader
 * ========================================================================
 * Unified configuration loading: YAML/JSON files with ${VAR:-default}
 * placeholder expansion plus APP_-prefixed environment overrides.
 * ======================================================================== */

// Loader loads configuration into a struct.
type Loader interface {
	Load(config any) error
}

type viperLoader struct {
	configPath string
	configName string
	configType string
	envPrefix  string
}

var envPlaceholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

func expandEnvPlaceholders(raw string) string {
	return envPlaceholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		sub := envPlaceholderPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}

		name := sub[1]
		def := ""
		if len(sub) >= 3 {
			def = sub[2]
		}

		// Bash ${VAR:-default} semantics: unset or empty falls back.
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		if def != "" {
			return def
		}
		return ""
	})
}

// NewLoader creates a loader searching configPath for configName.configType.
func NewLoader(configPath, configName, configType string) Loader {
	return &viperLoader{
		configPath: configPath,
		configName: configName,
		configType: configType,
		envPrefix:  "APP",
	}
}

// NewLoaderWithEnvPrefix creates a loader with a custom env var prefix.
func NewLoaderWithEnvPrefix(configPath, configName, configType, envPrefix string) Loader {
	return &viperLoader{
		configPath: configPath,
		configName: configName,
		configType: configType,
		envPrefix:  envPrefix,
	}
}

func (l *viperLoader) Load(config any) error {
	// Let viper locate the file first (AddConfigPath + SetConfigName search).
	finder := viper.New()
	finder.AddConfigPath(l.configPath)
	finder.SetConfigName(l.configName)
	finder.SetConfigType(l.configType)

	finder.SetEnvPrefix(l.envPrefix)
	finder.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	finder.AutomaticEnv()

	if err := finder.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	configFile := finder.ConfigFileUsed()

	// Re-read with env placeholder expansion applied before parsing.
	v := viper.New()
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			return err
		}
		expanded := expandEnvPlaceholders(string(raw))

		v.SetConfigType(l.configType)
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return err
		}
	}

	return v.Unmarshal(config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
}
