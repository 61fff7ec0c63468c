// Package language normalizes user-supplied language identifiers to the
// codes used by the Vosk model catalog.
//
// The catalog keys models by short codes that are mostly ISO 639-1 but not
// entirely ("cn" for Chinese, "vn" for Vietnamese, "ph" for Filipino). All
// conversions between user input, catalog codes, and display names are
// consolidated here.
package language
