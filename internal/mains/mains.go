// Package mains guesses the local electrical mains frequency from the
// system timezone. Mains hum shows up at 50 or 60 Hz (plus harmonics), so
// the guess lets noise-floor advice name the likely hum frequency.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

const defaultHz = 50 // most of the world

// Hz returns the local mains frequency in Hz (50 or 60), falling back to
// 50 Hz when the timezone cannot be resolved.
func Hz() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return defaultHz
	}
	return HzForTimezone(timezone)
}

// HzForTimezone returns the mains frequency for an IANA timezone name.
func HzForTimezone(timezone string) int {
	// UTC, GMT, and the Etc/ zones carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return defaultHz
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return defaultHz
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return defaultHz
	}
	return hzForCountry(country)
}

func hzForCountry(country string) int {
	// Japan runs both grids, split roughly at the Fujigawa river. The
	// Tokyo side is 50 Hz and holds most of the population.
	if country == "Japan" {
		return 50
	}
	if sixtyHz[country] {
		return 60
	}
	return defaultHz
}

// sixtyHz holds the countries on 60 Hz grids; everywhere else is 50 Hz.
// Per https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHz = make(map[string]bool)

func init() {
	for _, region := range [][]string{
		{"United States", "Canada", "Mexico"},
		{"Belize", "Costa Rica", "El Salvador", "Guatemala", "Honduras",
			"Nicaragua", "Panama"},
		{"Bahamas", "Barbados", "Cayman Islands", "Cuba",
			"Dominican Republic", "Haiti", "Jamaica", "Puerto Rico",
			"Trinidad and Tobago", "U.S. Virgin Islands"},
		// Brazil has pockets of 50 Hz but 60 Hz predominates.
		{"Brazil", "Colombia", "Ecuador", "Guyana", "Peru", "Suriname",
			"Venezuela"},
		{"South Korea", "Taiwan", "Philippines", "Saudi Arabia"},
		{"Guam", "American Samoa", "Marshall Islands", "Micronesia",
			"Palau"},
	} {
		for _, country := range region {
			sixtyHz[country] = true
		}
	}
}
