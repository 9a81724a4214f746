package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("TRACE"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("Warn"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("gibberish"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
}
