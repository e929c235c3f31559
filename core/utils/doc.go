// Package utils provides strict value conversion helpers.
// They back the reconcile value-type dispatch table, so each helper reports
// an error instead of guessing when a value has the wrong shape.
package utils
