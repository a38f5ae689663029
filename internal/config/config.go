package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig points at the S3-compatible bucket holding binaries and
// metadata documents. MediaPrefix and LogoPrefix are the two namespaces
// inside the bucket; PublicBaseURL is the externally visible root used
// when deriving file retrieval URLs.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	MediaPrefix     string `mapstructure:"media_prefix"`
	LogoPrefix      string `mapstructure:"logo_prefix"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// AuthConfig describes the remote verification endpoint for the
// service header pair.
type AuthConfig struct {
	VerifyURL string        `mapstructure:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxSizeBytes     int64    `mapstructure:"max_size_bytes"`
	AllowedMimeTypes []string `mapstructure:"allowed_mime_types"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig is for the write-only shadow store. An empty URI
// disables shadow writes entirely.
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling, e.g. storage.bucket_name -> STORAGE_BUCKET_NAME
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.media_prefix", "media/")
	viper.SetDefault("storage.logo_prefix", "logos/")
	viper.SetDefault("storage.public_base_url", "http://localhost:8080")
	viper.SetDefault("storage.use_ssl", true)
	viper.SetDefault("auth.timeout", "5s")
	viper.SetDefault("upload.max_size_bytes", 50*1024*1024)
	viper.SetDefault("upload.allowed_mime_types", []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"video/mp4",
		"video/quicktime",
		"video/x-msvideo",
		"video/x-ms-wmv",
		"video/webm",
	})
	viper.SetDefault("cache.ttl", "2h")

	err = viper.ReadInConfig()
	// Missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
