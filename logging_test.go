package starter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo("demo", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("ready")
	l.Warnf("slow frame")
	l.Errorf("lost device")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasSuffix(lines[0], "[demo] DEBUG: shown 2"), lines[0])
		assert.True(t, strings.HasSuffix(lines[1], "[demo] INFO: ready"), lines[1])
	}
	assert.Contains(t, errOut.String(), "[demo] WARN: slow frame")
	assert.Contains(t, errOut.String(), "[demo] ERROR: lost device")
}

func TestDefaultLoggerWithoutPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo("", false, &out, &out)
	l.Infof("x=%d", 3)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), " INFO: x=3"), out.String())
}

func TestLoggingModules(t *testing.T) {
	app, err := NewAppBuilder().UseModule(LoggingModule{Prefix: "p", Debug: true}).Build()
	assert.NoError(t, err)
	assert.IsType(t, &DefaultLogger{}, app.Logger())
	assert.True(t, app.Logger().DebugEnabled())

	var out bytes.Buffer
	custom := NewLoggerTo("c", false, &out, &out)
	app, err = NewAppBuilder().UseModule(LoggerModule{Logger: custom}).Build()
	assert.NoError(t, err)
	app.Logger().Infof("through module")
	assert.Contains(t, out.String(), "[c] INFO: through module")

	app, err = NewAppBuilder().UseModule(LoggerModule{}).Build()
	assert.NoError(t, err)
	assert.False(t, app.Logger().DebugEnabled())
}
