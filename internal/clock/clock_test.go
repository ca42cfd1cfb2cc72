package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSince(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)
	previous := NowFunc
	NowFunc = func() time.Time { return fixed }
	defer func() { NowFunc = previous }()

	assert.Equal(t, fixed, Now())
	assert.Equal(t, 10*time.Second, Since(fixed.Add(-10*time.Second)))
}
