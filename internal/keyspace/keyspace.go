// Package keyspace defines the on-store key layout of URL mappings.
//
// A mapping key looks like "url:serial:00000000000000000042:result". The serial
// segment is always SerialWidth digits wide, so sorting keys lexicographically
// sorts them by serial.
package keyspace

import (
	"strconv"
	"strings"

	"github.com/vadimbarashkov/url-shortener-kv/internal/codec"
)

const (
	// Namespace is the tag shared by every key this service writes.
	Namespace = "url"
	// SerialWidth is the number of decimal digits of the serial segment.
	// 20 digits hold every uint64.
	SerialWidth = 20

	mappingPrefix = Namespace + ":serial:"
	mappingSuffix = ":result"
)

// MappingPrefix returns the prefix shared by all mapping keys.
func MappingPrefix() string {
	return mappingPrefix
}

// MappingKey returns the key under which the URL of serial is stored.
func MappingKey(serial uint64) string {
	return mappingPrefix + codec.ZeroFill(strconv.FormatUint(serial, 10), SerialWidth) + mappingSuffix
}

// ParseMappingKey extracts the serial from a mapping key.
// It reports false for keys of another namespace or kind, and for serial
// segments that are not exactly SerialWidth decimal digits.
func ParseMappingKey(key string) (uint64, bool) {
	if !strings.HasPrefix(key, mappingPrefix) || !strings.HasSuffix(key, mappingSuffix) {
		return 0, false
	}

	segment := key[len(mappingPrefix) : len(key)-len(mappingSuffix)]
	if len(segment) != SerialWidth {
		return 0, false
	}

	for i := 0; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return 0, false
		}
	}

	serial, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		return 0, false
	}

	return serial, true
}
