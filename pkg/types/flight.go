package types

// Canonical column names of the flight price dataset.
const (
	ColAirline             = "airline"
	ColSource              = "source"
	ColSourceName          = "source_name"
	ColDestination         = "destination"
	ColDestinationName     = "destination_name"
	ColDepartureDatetime   = "departure_datetime"
	ColArrivalDatetime     = "arrival_datetime"
	ColDurationHrs         = "duration_hrs"
	ColStopovers           = "stopovers"
	ColAircraftType        = "aircraft_type"
	ColClass               = "class"
	ColBookingSource       = "booking_source"
	ColBaseFare            = "base_fare_bdt"
	ColTaxSurcharge        = "tax_surcharge_bdt"
	ColTotalFare           = "total_fare_bdt"
	ColSeasonality         = "seasonality"
	ColDaysBeforeDeparture = "days_before_departure"
)

// Columns derived by the transform stage.
const (
	ColIsPeakSeason = "is_peak_season"
	ColRoute        = "route"
)

// FlightSchema returns the expected canonical schema of the flight price
// dataset.
func FlightSchema() Schema {
	return Schema{
		ColAirline:             KindText,
		ColSource:              KindText,
		ColSourceName:          KindText,
		ColDestination:         KindText,
		ColDestinationName:     KindText,
		ColDepartureDatetime:   KindTimestamp,
		ColArrivalDatetime:     KindTimestamp,
		ColDurationHrs:         KindFloat,
		ColStopovers:           KindText,
		ColAircraftType:        KindText,
		ColClass:               KindText,
		ColBookingSource:       KindText,
		ColBaseFare:            KindFloat,
		ColTaxSurcharge:        KindFloat,
		ColTotalFare:           KindFloat,
		ColSeasonality:         KindText,
		ColDaysBeforeDeparture: KindInteger,
	}
}

// FlightRequiredColumns returns the columns that must survive schema
// drift. Removing any of them is a breaking change.
func FlightRequiredColumns() []string {
	return []string{ColAirline, ColSource, ColDestination, ColBaseFare, ColTaxSurcharge, ColTotalFare}
}

// FlightColumnMapping maps raw CSV header captions to canonical column
// names.
func FlightColumnMapping() map[string]string {
	return map[string]string{
		"Airline":               ColAirline,
		"Source":                ColSource,
		"Source Name":           ColSourceName,
		"Destination":           ColDestination,
		"Destination Name":      ColDestinationName,
		"Departure Date & Time": ColDepartureDatetime,
		"Arrival Date & Time":   ColArrivalDatetime,
		"Duration (hrs)":        ColDurationHrs,
		"Stopovers":             ColStopovers,
		"Aircraft Type":         ColAircraftType,
		"Class":                 ColClass,
		"Booking Source":        ColBookingSource,
		"Base Fare (BDT)":       ColBaseFare,
		"Tax & Surcharge (BDT)": ColTaxSurcharge,
		"Total Fare (BDT)":      ColTotalFare,
		"Seasonality":           ColSeasonality,
		"Days Before Departure": ColDaysBeforeDeparture,
	}
}

// DefaultPeakSeasons returns the seasonality values treated as peak.
func DefaultPeakSeasons() []string {
	return []string{"Eid", "Hajj", "Winter"}
}

// DefaultConfig returns a Config preloaded with the flight dataset
// defaults. Callers fill in DataDir, SourcePath, and WorkflowID.
func DefaultConfig() Config {
	return Config{
		ChunkSize:       10000,
		SampleRows:      100,
		ExpectedSchema:  FlightSchema(),
		RequiredColumns: FlightRequiredColumns(),
		ColumnMapping:   FlightColumnMapping(),
		PeakSeasons:     DefaultPeakSeasons(),
	}
}
