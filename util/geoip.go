package util

import (
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipDB    *geoip2.Reader
	geoipCache *cache.Cache
)

// InitGeoIP initializes the local GeoIP2 database reader and an in-memory
// lookup cache. Provide the path to a GeoIP2/GeoLite2 .mmdb file via dbPath,
// or set GEOIP_DB_PATH. If no database is configured, initialization is a
// no-op and lookups return empty values.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipDB = r
	geoipCache = cache.New(24*time.Hour, 1*time.Hour)
	return nil
}

// CloseGeoIP releases the GeoIP database reader if one was opened.
func CloseGeoIP() {
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
	geoipCache = nil
}

type ipLocation struct {
	City    string
	Country string
}

// GetIPLocation resolves an IP address to (city, country) using the local
// GeoIP database with a 24h in-memory cache. Private, malformed, or unknown
// addresses resolve to empty strings.
func GetIPLocation(ipStr string) (string, string) {
	if geoipDB == nil || ipStr == "" {
		return "", ""
	}

	if geoipCache != nil {
		if v, found := geoipCache.Get(ipStr); found {
			if loc, ok := v.(ipLocation); ok {
				return loc.City, loc.Country
			}
		}
	}

	ip := net.ParseIP(ipStr)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() {
		return "", ""
	}

	record, err := geoipDB.City(ip)
	if err != nil {
		return "", ""
	}

	loc := ipLocation{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	if geoipCache != nil {
		geoipCache.Set(ipStr, loc, cache.DefaultExpiration)
	}
	return loc.City, loc.Country
}
