package harvest

import (
	"fmt"
	"sort"

	"FeedstockSourcing/internal/domain"
)

// Family groups harvest systems by how residue is left at the landing.
type Family string

const (
	WholeTree   Family = "whole-tree"
	CutToLength Family = "cut-to-length"
	LogOnly     Family = "log"
)

// System is a harvest system understood by the harvest-cost model.
type System struct {
	Name   string
	Family Family
}

// RecoveryFraction picks the residue recovery share that applies to the system.
func (s System) RecoveryFraction(r domain.RecoveryFractions) float64 {
	switch s.Family {
	case WholeTree:
		return r.WholeTree
	case CutToLength:
		return r.CutToLength
	default:
		return 0
	}
}

// Registry keeps a mapping from system names to their definitions.
type Registry struct {
	systems map[string]System
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{systems: map[string]System{}}
}

// DefaultRegistry returns the systems supported by the harvest-cost model.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []System{
		{Name: "Ground-Based Mech WT", Family: WholeTree},
		{Name: "Ground-Based Manual WT", Family: WholeTree},
		{Name: "Ground-Based Manual Log", Family: LogOnly},
		{Name: "Ground-Based CTL", Family: CutToLength},
		{Name: "Cable Manual WT/Log", Family: WholeTree},
		{Name: "Cable Manual WT", Family: WholeTree},
		{Name: "Cable Manual Log", Family: LogOnly},
		{Name: "Cable CTL", Family: CutToLength},
		{Name: "Helicopter Manual Log", Family: LogOnly},
		{Name: "Helicopter CTL", Family: CutToLength},
	} {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a system definition.
func (r *Registry) Register(system System) {
	if r.systems == nil {
		r.systems = map[string]System{}
	}
	r.systems[system.Name] = system
}

// Resolve returns a system by name.
func (r *Registry) Resolve(name string) (System, error) {
	if system, ok := r.systems[name]; ok {
		return system, nil
	}
	return System{}, fmt.Errorf("%w: %q", domain.ErrUnknownHarvestSystem, name)
}

// Names lists registered systems in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
