package keyspace

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappingKey(t *testing.T) {
	assert.Equal(t, "url:serial:00000000000000000000:result", MappingKey(0))
	assert.Equal(t, "url:serial:00000000000000000042:result", MappingKey(42))
	assert.Equal(t, "url:serial:18446744073709551615:result", MappingKey(math.MaxUint64))
}

func TestMappingKeysSortBySerial(t *testing.T) {
	serials := []uint64{1000, 9, 10, 1, 99, 100, math.MaxUint64, 12345678901}

	keys := make([]string, 0, len(serials))
	for _, s := range serials {
		keys = append(keys, MappingKey(s))
	}
	sort.Strings(keys)

	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })

	for i, key := range keys {
		serial, ok := ParseMappingKey(key)

		assert.True(t, ok)
		assert.Equal(t, serials[i], serial)
	}
}

func TestParseMappingKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		want   uint64
		wantOK bool
	}{
		{"valid", "url:serial:00000000000000000042:result", 42, true},
		{"max serial", "url:serial:18446744073709551615:result", math.MaxUint64, true},
		{"other kind", "url:serial:00000000000000000042:meta", 0, false},
		{"other namespace", "ratelimit:serial:00000000000000000042:result", 0, false},
		{"short segment", "url:serial:42:result", 0, false},
		{"long segment", "url:serial:000000000000000000042:result", 0, false},
		{"non digit segment", "url:serial:0000000000000000004x:result", 0, false},
		{"signed segment", "url:serial:+0000000000000000042:result", 0, false},
		{"beyond uint64", "url:serial:99999999999999999999:result", 0, false},
		{"counter key", "url:serial:counter", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMappingKey(tt.key)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMappingPrefix(t *testing.T) {
	assert.Equal(t, "url:serial:", MappingPrefix())
}
