// Package model defines the data structures used throughout the application.
package model

import "time"

// PlantCare holds the free-text care descriptors returned by the plant
// classifier. All fields are display text; the only one the scheduler
// interprets is Water (e.g. "Every 2-3 days").
type PlantCare struct {
	Water string `json:"water"`
	Light string `json:"light"`
	Soil  string `json:"soil"`
	Temp  string `json:"temp"`
	Toxic string `json:"toxic"`
}

// GardenEntry is one plant in a user's garden.
//
// LastWatered and NextWatering are the watering schedule. NextWatering is
// always derived — LastWatered plus the interval parsed from Care.Water —
// and is recomputed from scratch whenever LastWatered changes. It is never
// advanced incrementally from its previous value, so repeated updates can't
// accumulate drift.
type GardenEntry struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	CommonName     string    `json:"commonName"`
	ScientificName string    `json:"scientificName"`
	Confidence     int       `json:"confidence"` // classifier confidence, 0-100
	Family         string    `json:"family"`
	Care           PlantCare `json:"care"`
	LastWatered    time.Time `json:"lastWatered"`
	NextWatering   time.Time `json:"nextWatering"`
	AddedAt        time.Time `json:"addedAt"`
}

// IdentifiedPlant is the classifier output a user commits to their garden.
// The classifier itself is an external service; by the time data reaches
// this core it is just names, a confidence score, and care text.
type IdentifiedPlant struct {
	CommonName     string    `json:"commonName"`
	ScientificName string    `json:"scientificName"`
	Confidence     int       `json:"confidence"`
	Family         string    `json:"family"`
	Care           PlantCare `json:"care"`
}
