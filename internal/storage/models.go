package storage

// Filter is one persisted watchlist entry. Position keeps submission order.
type Filter struct {
	Position   int    `gorm:"primaryKey;autoIncrement:false"`
	Identifier string `gorm:"not null"`
	IsExact    bool
	Label      string
}

// Preference is a small key/value row for boot flags and counters.
type Preference struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const (
	PrefFilterCount         = "filterCount"
	PrefFactoryResetPending = "factoryResetPending"
)
