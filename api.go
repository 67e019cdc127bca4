// Package openregister provides a Go client for the UK Government's Open
// Register platform: public data registers of records, each scoped to a
// phase (discovery, alpha, beta).
//
// # Overview
//
// The package provides three main components:
//
//   - Catalog: constructs Registers and Fields, keeping one live instance per
//     (type, phase, name) and fetching each one's metadata exactly once
//   - Register: a register's declared fields plus its records, fetched lazily
//   - FieldValue: a raw record value that resolves curies (references of the
//     form "register:id") to the target record's name on demand
//
// # Quick Start
//
//	catalog, err := openregister.NewCatalog()
//	if err != nil {
//	    return err
//	}
//
//	registers, err := catalog.RegistersWithField(ctx, "organisation", openregister.PhaseAlpha)
//	for _, r := range registers {
//	    records, err := r.Records(ctx)
//	    for _, rec := range records.All() {
//	        org, _ := rec.Get("organisation")
//	        name, ok, err := org.Value(ctx)
//	        // ...
//	    }
//	}
//
// # Caching
//
// Registers and fields live as long as their Catalog. Responses can also be
// cached across runs with any cache.Store:
//
//	store, err := cache.OpenSQLiteStore("register_cache.sqlite", 24*time.Hour)
//	catalog, err := openregister.NewCatalog(openregister.WithCache(store))
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use.
package openregister

import (
	"context"
	"fmt"
)

// Phases of the platform. Each phase has its own hosts and datasets.
const (
	PhaseDiscovery = "discovery"
	PhaseAlpha     = "alpha"
	PhaseBeta      = "beta"
)

// DefaultPhase is the phase used when none is given.
const DefaultPhase = PhaseAlpha

// Phases lists the platform's phases from least to most mature.
var Phases = []string{PhaseDiscovery, PhaseAlpha, PhaseBeta}

// FieldMatch is one resolved value of a field, tagged with its origin.
type FieldMatch struct {
	Register *Register
	RecordID string

	// Value is the resolved value; OK is false when the field is blank.
	Value string
	OK    bool
}

// CollectFieldValues resolves fieldName on every record of every register
// on phase that declares it.
func (c *Catalog) CollectFieldValues(ctx context.Context, fieldName, phase string) ([]FieldMatch, error) {
	registers, err := c.RegistersWithField(ctx, fieldName, phase)
	if err != nil {
		return nil, err
	}

	var out []FieldMatch
	for _, r := range registers {
		records, err := r.Records(ctx)
		if err != nil {
			return nil, err
		}
		for id, rec := range records.All() {
			fv, ok := rec.Get(fieldName)
			if !ok {
				return nil, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, fieldName, r.Name())
			}
			value, present, err := fv.Value(ctx)
			if err != nil {
				return nil, fmt.Errorf("%s record %s: %w", r.Name(), id, err)
			}
			out = append(out, FieldMatch{Register: r, RecordID: id, Value: value, OK: present})
		}
	}
	return out, nil
}
