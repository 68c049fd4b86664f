// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result
// as applying them once. Invalid input yields an empty value rather than an
// error, leaving the rejection to the validators.
//
// Normalization includes:
//   - Text: collapse whitespace runs, trim, drop control characters
//   - Emails: trim and lowercase
//   - Phones: E.164, national numbers are read as Moroccan
//   - URLs: enforce https, lowercase host, drop utm_ parameters
//   - Slices: drop empty values and duplicates after normalization
//   - Search: escape the free text query for a regular expression match
package sanitizer
