// Package sample periodically records a simulation's compartment
// populations to an output Target — CSV files, fixed-width binary
// records, or stdout — gated by each Chemical's and CompartmentType's own
// output flag.
package sample

import (
	"path"

	"github.com/achemlab/sgnssim/internal/sgns"
)

// Sampler walks a compartment tree and writes one record per
// output-enabled compartment to Target.
type Sampler struct {
	target Target
}

// NewSampler creates a sampler writing to target.
func NewSampler(target Target) *Sampler {
	return &Sampler{target: target}
}

// SampleState records the current population of every output-enabled
// chemical, in every output-enabled compartment of env's subtree, as one
// sample — bracketed by a single Target.EndSample call once every
// compartment has been written.
func (s *Sampler) SampleState(simTime float64, env *sgns.HierCompartment) error {
	if err := s.sampleCompartment(simTime, "env", env); err != nil {
		return err
	}
	return s.target.EndSample()
}

func (s *Sampler) sampleCompartment(simTime float64, compartmentPath string, c *sgns.HierCompartment) error {
	typ := c.Type()
	if typ.ShouldOutput() {
		isFirstSample, err := s.target.BeginCompartment(compartmentPath, c.InstantiationIndex())
		if err != nil {
			return err
		}
		if isFirstSample {
			if err := s.target.WriteHeaderField("time"); err != nil {
				return err
			}
			for i := 0; i < typ.ChemicalCount(); i++ {
				if typ.ChemicalAt(i).ShouldOutput() {
					if err := s.target.WriteHeaderField(typ.ChemicalAt(i).Name()); err != nil {
						return err
					}
				}
			}
		}

		if err := s.target.WriteFloat64(simTime); err != nil {
			return err
		}
		for i := 0; i < typ.ChemicalCount(); i++ {
			if !typ.ChemicalAt(i).ShouldOutput() {
				continue
			}
			if err := s.target.WriteInt64(c.GetPopulation(i)); err != nil {
				return err
			}
		}
	}

	for sub := c.FirstSubCompartment(); sub != nil; sub = sub.NextInContainer() {
		subPath := path.Join(compartmentPath, sub.Type().Name())
		if err := s.sampleCompartment(simTime, subPath, sub); err != nil {
			return err
		}
	}
	return nil
}
