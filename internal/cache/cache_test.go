package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	a := Key("deterministic", "1000000|30|2|50|senior|1|A|false")
	b := Key("deterministic", "1000000|30|2|50|senior|1|A|false")
	c := Key("deterministic", "1000000|31|2|50|senior|1|A|false")
	remote := Key("remote", "1000000|30|2|50|senior|1|A|false")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, remote)
	assert.True(t, strings.HasPrefix(a, KeyPrefix+":deterministic:"))
	assert.Len(t, strings.TrimPrefix(a, KeyPrefix+":deterministic:"), 16)
}
