package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Species is an iris species identifier as used in the reference data.
type Species string

const (
	Setosa     Species = "setosa"
	Versicolor Species = "versicolor"
	Virginica  Species = "virginica"
)

// AllSpecies lists the known species in a stable order.
var AllSpecies = []Species{Setosa, Versicolor, Virginica}

// Label returns the display form used by the prediction endpoint ("Setosa").
func (s Species) Label() string { return DisplayLabel(string(s)) }

// DisplayLabel title-cases a species label coming from any source.
// A Caser keeps state between calls, so each call builds its own.
func DisplayLabel(s string) string { return cases.Title(language.English).String(s) }

// ModelOption is an entry of the model selector.
type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
