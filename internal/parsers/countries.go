package parsers

import (
	"strings"

	"github.com/mrlokans/memberimport/internal/utils"
)

// Country names accepted in address columns, by ISO 3166 alpha-2 code.
var countryNames = map[string][]string{
	"BE": {"België", "Belgium", "Belgique", "Belgien"},
	"NL": {"Nederland", "Netherlands", "The Netherlands", "Pays-Bas", "Holland"},
	"LU": {"Luxemburg", "Luxembourg"},
	"FR": {"Frankrijk", "France"},
	"DE": {"Duitsland", "Germany", "Allemagne", "Deutschland"},
	"GB": {"Verenigd Koninkrijk", "United Kingdom", "Royaume-Uni", "Engeland", "England", "UK"},
	"IE": {"Ierland", "Ireland", "Irlande"},
	"ES": {"Spanje", "Spain", "Espagne", "España"},
	"PT": {"Portugal"},
	"IT": {"Italië", "Italy", "Italie", "Italia"},
	"CH": {"Zwitserland", "Switzerland", "Suisse", "Schweiz"},
	"AT": {"Oostenrijk", "Austria", "Autriche", "Österreich"},
	"DK": {"Denemarken", "Denmark", "Danemark"},
	"SE": {"Zweden", "Sweden", "Suède"},
	"NO": {"Noorwegen", "Norway", "Norvège"},
	"FI": {"Finland", "Finlande"},
	"PL": {"Polen", "Poland", "Pologne"},
	"CZ": {"Tsjechië", "Czech Republic", "Czechia", "République tchèque"},
	"US": {"Verenigde Staten", "United States", "USA", "États-Unis"},
}

// countrySlugs maps every slugged name and code to its code.
var countrySlugs = func() map[string]string {
	slugs := make(map[string]string)
	for code, names := range countryNames {
		slugs[utils.Slug(code)] = code
		for _, name := range names {
			slugs[utils.Slug(name)] = code
		}
	}
	return slugs
}()

// LookupCountry resolves a country name or code by exact slug match.
func LookupCountry(text string) (string, bool) {
	code, ok := countrySlugs[utils.Slug(text)]
	return code, ok
}

// CountryName returns the first (Dutch) name for a code, or the code itself.
func CountryName(code string) string {
	if names, ok := countryNames[strings.ToUpper(code)]; ok {
		return names[0]
	}
	return code
}
