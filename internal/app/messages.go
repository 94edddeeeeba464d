package app

import "time"

// TickMsg drives the detector tick loop and the frame update.
type TickMsg time.Time

// ScanErrorMsg reports scanner errors.
type ScanErrorMsg struct {
	Err error
}
