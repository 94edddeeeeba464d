//go:build linux

package bluetooth

import "tinygo.org/x/bluetooth"

// adapterFor picks a BlueZ adapter by name, hci0 when id is empty.
func adapterFor(id string) *bluetooth.Adapter {
	if id == "" || id == "hci0" {
		return bluetooth.DefaultAdapter
	}
	return bluetooth.NewAdapter(id)
}
