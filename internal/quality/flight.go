package quality

import "github.com/mesh-intelligence/fareflow/pkg/types"

// FlightExpectations returns the standard expectation suite for the
// flight price dataset: required columns exist, key fields are mostly
// non-null, fares are mostly non-negative, at least one row was loaded,
// and the mean total fare is plausible.
func FlightExpectations(ds *types.Dataset) *Validator {
	v := New(ds, "flight_price_data")

	for _, col := range types.FlightRequiredColumns() {
		v.ExpectColumnToExist(col)
	}

	v.ExpectColumnValuesToNotBeNull(types.ColAirline, 0.95)
	v.ExpectColumnValuesToNotBeNull(types.ColSource, 0.99)
	v.ExpectColumnValuesToNotBeNull(types.ColDestination, 0.99)
	v.ExpectColumnValuesToNotBeNull(types.ColBaseFare, 0.99)
	v.ExpectColumnValuesToNotBeNull(types.ColTotalFare, 0.99)

	v.ExpectColumnValuesToBeBetween(types.ColBaseFare, Float(0), nil, 0.99)
	v.ExpectColumnValuesToBeBetween(types.ColTaxSurcharge, Float(0), nil, 0.99)
	v.ExpectColumnValuesToBeBetween(types.ColTotalFare, Float(0), nil, 0.99)

	v.ExpectRowCountToBeBetween(1, nil)
	v.ExpectColumnMeanToBeBetween(types.ColTotalFare, Float(1000), nil)

	return v
}
