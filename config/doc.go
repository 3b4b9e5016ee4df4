// Package config loads authkit configuration from files and the environment.
//
// It uses Viper to merge a YAML config file, a .env file and process
// environment variables, in that order. Environment variables address nested
// keys with underscores (e.g. AUTH_SESSION_SECURITY_KEY).
//
//	var cfg struct {
//	    Auth authkit.Config `mapstructure:"auth"`
//	}
//	err := config.Load(&cfg, config.WithConfigFile("config.yml"))
package config
