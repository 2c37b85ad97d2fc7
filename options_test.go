package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilOptionsLoggerNeverPanics(t *testing.T) {
	var o *Options
	assert.NotPanics(t, func() { o.logger().Info("hello") })

	o2 := &Options{}
	assert.NotPanics(t, func() { o2.logger().Info("hello") })
}

func TestNilEncodeOptionsLoggerNeverPanics(t *testing.T) {
	var o *EncodeOptions
	assert.NotPanics(t, func() { o.logger().Info("hello") })
}

func TestNilOptimizeOptionsLoggerNeverPanics(t *testing.T) {
	var o *OptimizeOptions
	assert.NotPanics(t, func() { o.logger().Info("hello") })
}

func TestDiscardWriterReportsFullWrite(t *testing.T) {
	n, err := discardWriter{}.Write([]byte("abcde"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}
