package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("wrote %d rows", 3)

	if len(got) != 1 || got[0] != "wrote 3 rows" {
		t.Errorf("captured %q, want [\"wrote 3 rows\"]", got)
	}

	// nil installs a no-op; must not panic or reach the previous logger.
	SetLogger(nil)
	Logf("dropped")
	if len(got) != 1 {
		t.Errorf("no-op logger forwarded a message: %q", got)
	}
}

func TestDebugf(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetVerbose(false)
	}()

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })

	SetVerbose(false)
	Debugf("hidden")
	if calls != 0 {
		t.Errorf("Debugf logged with verbose off")
	}

	SetVerbose(true)
	Debugf("shown")
	if calls != 1 {
		t.Errorf("Debugf calls = %d, want 1", calls)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
}
