package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIPLocation_EmptyAndLocalIPs(t *testing.T) {
	for _, ip := range []string{"", "127.0.0.1", "::1", "10.0.0.5", "192.168.1.20"} {
		city, country := GetIPLocation(ip)
		assert.Empty(t, city, "ip %s", ip)
		assert.Empty(t, country, "ip %s", ip)
	}
}

func TestGetIPLocation_NoDatabaseLoaded(t *testing.T) {
	CloseGeoIP()
	city, country := GetIPLocation("203.0.113.9")
	assert.Empty(t, city)
	assert.Empty(t, country)
}

func TestInitGeoIP_MissingPathIsNoop(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	assert.NoError(t, InitGeoIP(""))
}

func TestInitGeoIP_BadFile(t *testing.T) {
	assert.Error(t, InitGeoIP("/nonexistent/geoip.mmdb"))
}

func TestGetGeoIPCacheMetrics(t *testing.T) {
	hits, misses, size := GetGeoIPCacheMetrics()
	assert.GreaterOrEqual(t, hits, int64(0))
	assert.GreaterOrEqual(t, misses, int64(0))
	assert.GreaterOrEqual(t, size, 0)
}
