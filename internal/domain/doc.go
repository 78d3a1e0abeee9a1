// Package domain turns hourly forecast readings into heat-safety bulletins.
//
// # Data Source
//
// Hourly readings arrive already fetched from an upstream weather provider,
// either as Kafka messages, HTTP request bodies, or JSON files on disk. Two
// document shapes are accepted by [ParseForecast]: the native shape with
// RFC 3339 timestamps and the provider "hourly" shape with unix timestamps
// and a timezone offset. Temperatures are in degrees Fahrenheit. Every hour
// must carry a timestamp, temperature, and humidity; an absent field rejects
// the whole forecast rather than reading as zero. A missing UV index is 0.
//
// # Heat Index
//
// The heat index is computed with the NWS Rothfusz regression:
//
//	HI = -42.379 + 2.04901523T + 10.14333127R - 0.22475541TR
//	     - 0.00683783T² - 0.05481717R² + 0.00122874T²R
//	     + 0.00085282TR² - 0.00000199T²R²
//
// with the NWS low-humidity (R < 13%, 80°F ≤ T ≤ 112°F) and high-humidity
// (R > 85%, 80°F ≤ T ≤ 87°F) adjustments. Below the regression floor
// (80°F by default) the heat index is the air temperature.
//
// # UV Exposure Bump
//
// Hours with a UV index at or above the trigger (8 by default) receive a
// fixed +3°F exposure bump. The bump is guidance only, not a meteorological
// correction, so it is kept in [EvaluatedHour.UVBumpF] and flagged with
// [EvaluatedHour.UVAdjusted] for disclosure in rendered bulletins.
//
// # Risk Bands
//
// Adjusted heat index values map to four categories using the NWS bands:
//
//	< 90°F  Low
//	< 104°F Moderate
//	< 125°F High
//	≥ 125°F Extreme
//
// # Schedules
//
// Work/rest cycles and hydration come from a [ScheduleTable] keyed by role
// and peak risk. The table is checked for every role and risk combination
// when it is built, so lookups cannot miss at request time.
//
// # ID Generation
//
// Bulletin IDs are deterministic SHA-256 hashes of location, role, session
// length, and every reading (timestamp, temperature, humidity, UV). Replaying
// the same forecast yields the same ID, which lets the archive upsert without
// coordination; a revised forecast or a different session gets a new ID and
// never overwrites a bulletin a client already holds. See [generateID].
package domain
