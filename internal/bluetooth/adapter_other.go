//go:build !linux

package bluetooth

import "tinygo.org/x/bluetooth"

// adapterFor returns the only adapter the platform exposes; id is ignored.
func adapterFor(id string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}
