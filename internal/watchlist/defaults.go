package watchlist

// Defaults is the watchlist used when nothing has ever been saved.
func Defaults() []Entry {
	return []Entry{
		{Pattern: "aa:bb:cc", Exact: false, Label: "Example Manufacturer"},
		{Pattern: "dd:ee:ff", Exact: false, Label: "Another Manufacturer"},
		{Pattern: "aa:bb:cc:12:34:56", Exact: true, Label: "Specific Device"},
	}
}
