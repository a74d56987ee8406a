package config

import "testing"

func TestReadConfDefaults(t *testing.T) {
	c, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf returned error: %v", err)
	}

	if c.Conf.Port != 8080 {
		t.Errorf("default port = %d, want 8080", c.Conf.Port)
	}
	if c.Conf.DeepLinkHost != "sportspal.app" {
		t.Errorf("default deep link host = %q", c.Conf.DeepLinkHost)
	}
	if c.Conf.DefaultDiscoveryRangeKm != 25 {
		t.Errorf("default discovery range = %v, want 25", c.Conf.DefaultDiscoveryRangeKm)
	}
}

func TestReadConfEnvOverrides(t *testing.T) {
	t.Setenv("SPORTSPAL_PORT", "9090")
	t.Setenv("SPORTSPAL_AWS_REGION", "us-east-1")
	t.Setenv("SPORTSPAL_DEEPLINK_HOST", "links.example.com")
	t.Setenv("SPORTSPAL_CACHE_DB", "/tmp/test_cache.db")

	c, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf returned error: %v", err)
	}

	if c.Conf.Port != 9090 {
		t.Errorf("port = %d, want 9090", c.Conf.Port)
	}
	if c.Conf.AwsRegion != "us-east-1" {
		t.Errorf("region = %q, want us-east-1", c.Conf.AwsRegion)
	}
	if c.Conf.DeepLinkHost != "links.example.com" {
		t.Errorf("deep link host = %q", c.Conf.DeepLinkHost)
	}
	if c.Conf.CacheDBPath != "/tmp/test_cache.db" {
		t.Errorf("cache db path = %q", c.Conf.CacheDBPath)
	}
}
