package dvid

import (
	"fmt"
	"strings"
	"testing"
)

type captureLogger struct {
	lines []string
}

func (c *captureLogger) add(level, format string, args ...interface{}) {
	c.lines = append(c.lines, level+" "+fmt.Sprintf(format, args...))
}

func (c *captureLogger) Debugf(format string, args ...interface{})    { c.add("DEBUG", format, args...) }
func (c *captureLogger) Infof(format string, args ...interface{})     { c.add("INFO", format, args...) }
func (c *captureLogger) Warningf(format string, args ...interface{})  { c.add("WARNING", format, args...) }
func (c *captureLogger) Errorf(format string, args ...interface{})    { c.add("ERROR", format, args...) }
func (c *captureLogger) Criticalf(format string, args ...interface{}) { c.add("CRITICAL", format, args...) }
func (c *captureLogger) Shutdown()                                    {}

func TestLogMode(t *testing.T) {
	capture := &captureLogger{}
	SetLogger(capture)
	oldMode := LogMode()
	defer func() {
		SetLogger(nil)
		SetLogMode(oldMode)
	}()

	SetLogMode(WarningMode)
	Debugf("hidden")
	Infof("hidden")
	Warningf("shown %d", 1)
	Errorf("shown %d", 2)
	if len(capture.lines) != 2 || capture.lines[0] != "WARNING shown 1" {
		t.Errorf("Unexpected log lines: %v\n", capture.lines)
	}

	SetLogMode(DebugMode)
	timedLog := NewTimeLog()
	timedLog.Debugf("done with %s", "work")
	last := capture.lines[len(capture.lines)-1]
	if !strings.HasPrefix(last, "DEBUG done with work: ") {
		t.Errorf("Timed log line missing elapsed time: %q\n", last)
	}

	SetLogMode(SilentMode)
	Criticalf("hidden")
	if len(capture.lines) != 3 {
		t.Errorf("Silent mode still logged: %v\n", capture.lines)
	}
}

func TestLogConfigStdout(t *testing.T) {
	var c *LogConfig
	c.SetLogger() // nil config keeps the standard logger
	(&LogConfig{}).SetLogger()
	if _, ok := logger.(stdLogger); !ok {
		t.Errorf("Expected standard logger without a log file\n")
	}
}
