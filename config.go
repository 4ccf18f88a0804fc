/*
* Singleton package for handling the global server configuration,
* loaded once on startup and shared between server components.
 */
package aurelia

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Filesystem locations that will be checked for a config file by default.
var defaultSearchPaths = []string{
	".",
	"/usr/local/etc/aurelia/",
	"setup/",
}

const envVarPrefix = "AURELIA"

// LoadConfig initializes viper with the config file under configPath (or the
// default search paths when configPath is empty) and binds every config key
// to an AURELIA_-prefixed environment variable.
func LoadConfig(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.AddConfigPath(configPath)
	} else {
		for _, path := range defaultSearchPaths {
			viper.AddConfigPath(path)
		}
	}

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("no config file found in search paths %v", defaultSearchPaths)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	// This allows nested yaml config options to be set through environment
	// variables. For example, database.host can be set using AURELIA_DATABASE_HOST.
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	return nil
}

// ConfigFileUsed returns the path of the config file viper settled on.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// DatabaseURL returns a postgres connection string generated from the loaded config.
func DatabaseURL() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		viper.GetString("database.host"),
		viper.GetInt("database.port"),
		viper.GetString("database.name"),
		viper.GetString("database.username"),
		viper.GetString("database.password"),
		viper.GetString("database.sslmode"),
	)
}
