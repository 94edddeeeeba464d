package config

import "time"

const (
	// Lifecycle
	ConfigTimeout = 20 * time.Second // Leave configuration mode if nobody connected
	SwitchGrace   = 5 * time.Second  // Delay between an accepted watchlist and scanning
	ResetGrace    = 3 * time.Second  // Delay between a reset request and the restart

	// Debounce
	NewCooldown   = 5 * time.Second  // Suppression window after a first sighting
	ShortCooldown = 5 * time.Second  // Suppression window after a short-gap re-sighting
	LongCooldown  = 10 * time.Second // Suppression window after a long-gap re-sighting
	ShortGap      = 5 * time.Second  // Minimum silence for a short-gap re-sighting
	LongGap       = 30 * time.Second // Minimum silence for a long-gap re-sighting

	// Device management
	DeviceExpiry   = 60 * time.Second // Forget devices not seen for this long
	SweepInterval  = 10 * time.Second // How often to run expiry
	StatusInterval = 30 * time.Second // How often to report tracking status

	// Loop and scanner
	TickInterval        = 100 * time.Millisecond // Cooperative tick loop period
	ScanRestartInterval = 3 * time.Second        // BLE scan stop/start cycle
	AlertQueueSize      = 64                     // Buffered alerts between scanner and tick loop

	// RSSI to distance estimation
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.5   // Path loss exponent (N)

	// Feedback
	PulseOn  = 200 * time.Millisecond // Duration of each alert pulse
	PulseOff = 150 * time.Millisecond // Pause between alert pulses

	// App
	AppName    = "BLE-WATCH"
	AppVersion = "1.0"
)
