package enums

// StockLocation tags which side of the ledger a movement touched.
type StockLocation string

const (
	StockLocationStore     StockLocation = "store"
	StockLocationWarehouse StockLocation = "warehouse"
	// StockLocationBoth is only valid for transfer movements.
	StockLocationBoth StockLocation = "both"
)

// IsValid reports whether the value is a known StockLocation.
func (s StockLocation) IsValid() bool {
	switch s {
	case StockLocationStore, StockLocationWarehouse, StockLocationBoth:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s StockLocation) String() string {
	return string(s)
}
