// Package sanitizer provides input normalization functions for catalog and
// profile data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Phone numbers: strip formatting, keep E.164 (+[country][number]) or drop
//   - URLs: enforce HTTPS, lowercase domains, preserve paths
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Amenities: lowercase snake_case keys - "High-Speed WiFi" becomes "high_speed_wifi"
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
