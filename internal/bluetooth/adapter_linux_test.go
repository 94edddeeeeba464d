//go:build linux

package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tinygo.org/x/bluetooth"
)

func TestNewBLEScanner_NamedAdapter(t *testing.T) {
	s := NewBLEScanner("hci1")
	assert.NotNil(t, s.adapter)
	assert.NotSame(t, bluetooth.DefaultAdapter, s.adapter)
}
