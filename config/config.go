package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Port                    int     `yaml:"port"`
		AwsRegion               string  `yaml:"awsRegion"`
		S3Bucket                string  `yaml:"s3Bucket"`
		FirebaseProjectID       string  `yaml:"firebaseProjectId"`
		DeepLinkHost            string  `yaml:"deepLinkHost"`
		CacheDBPath             string  `yaml:"cacheDbPath"`
		DefaultDiscoveryRangeKm float64 `yaml:"defaultDiscoveryRangeKm"`
	}
}

// ReadConf loads config.yaml from the working directory, falling back to the
// embedded defaults, then applies SPORTSPAL_* environment overrides.
func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	buf, err := os.ReadFile(ConfigFileName)
	if err != nil {
		log.Printf("Config file not found at %s, using embedded defaults", ConfigFileName)
		buf = embeddedConfig
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envPort := os.Getenv("SPORTSPAL_PORT")
	envRegion := os.Getenv("SPORTSPAL_AWS_REGION")
	envBucket := os.Getenv("SPORTSPAL_S3_BUCKET")
	envProject := os.Getenv("SPORTSPAL_FIREBASE_PROJECT")
	envHost := os.Getenv("SPORTSPAL_DEEPLINK_HOST")
	envCacheDB := os.Getenv("SPORTSPAL_CACHE_DB")

	if envPort != "" {
		v, err := strconv.Atoi(envPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.Port = v
	}

	if envRegion != "" {
		c.Conf.AwsRegion = envRegion
	}

	if envBucket != "" {
		c.Conf.S3Bucket = envBucket
	}

	if envProject != "" {
		c.Conf.FirebaseProjectID = envProject
	}

	if envHost != "" {
		c.Conf.DeepLinkHost = envHost
	}

	if envCacheDB != "" {
		c.Conf.CacheDBPath = envCacheDB
	}

	return c, nil
}
