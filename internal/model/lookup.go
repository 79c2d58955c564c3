package model

// Lookup is a reference row (id + unique label) of one of the lookup tables.
type Lookup struct {
	ID    uint64
	Label string
}

// LookupTable names a lookup table.
type LookupTable string

const (
	TimezoneTable    LookupTable = "timezones"
	LeadTypeTable    LookupTable = "lead_types"
	ContactTypeTable LookupTable = "contact_types"
)
