package sgns

import "sort"

// PopUpdater is anything that needs to know a chemical's population may
// have changed without necessarily having fired itself — an ordinary
// reaction Instance, or a nested UmbrellaInstance whose own propensity
// depends on the population. Both satisfy this via PopUpdate().
type PopUpdater interface {
	PopUpdate()
}

type popDepOffset struct {
	pop    int64
	depEnd int
}

type newDependency struct {
	index    int
	reaction PopUpdater
}

// Compartment holds the population vector for a set of chemical species
// and the dependency graph mapping each species to the reaction instances
// that need to be notified (via PopUpdate) when it changes. It embeds
// UmbrellaInstance by value: every compartment is, structurally, a
// propensity-1 pass-through umbrella living directly in the simulation's
// main queue, so reaction instances bound to it are enqueued into its own
// Inner() queue rather than the simulation's top-level one, and Go's method
// promotion gives *Compartment the Stream interface for free, the same way
// the original gets it through inheritance.
type Compartment struct {
	UmbrellaInstance

	sim *Simulation

	x             []popDepOffset
	dependencies  []PopUpdater
	chemicalCount int

	newDeps         []newDependency
	removedDepCount int

	waitList WaitList
}

// NewCompartment allocates a compartment with initialChemicalCount species,
// bound to sim's main queue. Callers that need the compartment scheduled
// (every HierCompartment) must call Begin() themselves once construction
// is otherwise complete — see hiercompartment.go.
func NewCompartment(sim *Simulation, initialChemicalCount int) *Compartment {
	c := &Compartment{}
	c.init(sim, initialChemicalCount)
	return c
}

// init wires up c in place. Like UmbrellaInstance.init, it must be called
// on c's final address: it binds the embedded UmbrellaInstance's and
// WaitList's closures to &c.UmbrellaInstance/&c.waitList, so a caller that
// embeds Compartment by value (HierCompartment) must call this directly on
// its own field rather than copying an already-initialized *Compartment.
func (c *Compartment) init(sim *Simulation, initialChemicalCount int) {
	c.sim = sim
	c.UmbrellaInstance.init(sim.SimQueue(), nullStoich{rng: sim.RNG()})
	c.waitList.init(c)
	if initialChemicalCount > 0 {
		c.SetChemicalCount(initialChemicalCount)
	}
}

func (c *Compartment) ChemicalCount() int { return c.chemicalCount }

// SetChemicalCount grows or shrinks the compartment's species table,
// carrying over populations and dependency offsets for indices that
// survive, and zeroing newly-added ones.
func (c *Compartment) SetChemicalCount(newCount int) {
	switch {
	case c.chemicalCount == 0 && newCount > 0:
		c.x = make([]popDepOffset, newCount)
	case c.chemicalCount > 0 && newCount == 0:
		c.x = nil
		c.dependencies = nil
		c.newDeps = nil
	case c.chemicalCount > 0 && newCount > 0:
		newX := make([]popDepOffset, newCount)
		n := c.chemicalCount
		if newCount < n {
			n = newCount
		}
		copy(newX, c.x[:n])
		for i := n; i < newCount; i++ {
			newX[i].depEnd = newX[i-1].depEnd
		}
		c.x = newX
	}
	c.chemicalCount = newCount
}

// AddDependency registers a pending dependency of reaction on the species
// at index. RebuildDependencies must be called before the next
// SetPopulation/ModifyPopulation for the dependency to actually fire.
func (c *Compartment) AddDependency(index int, reaction PopUpdater) {
	c.newDeps = append(c.newDeps, newDependency{index: index, reaction: reaction})
}

// RemoveDependency tombstones an existing dependency. As in the source this
// is grounded on, removedDepCount only ever gets incremented once between
// rebuilds — it's a liveness flag for "rebuild needed", not an exact
// tombstone count, so RebuildDependencies' allocation is an upper bound,
// never an undercount.
func (c *Compartment) RemoveDependency(index int, reaction PopUpdater) {
	i := 0
	if index > 0 {
		i = c.x[index-1].depEnd
	}
	for ; i < c.x[index].depEnd; i++ {
		if c.dependencies[i] == reaction {
			c.dependencies[i] = nil
			if c.removedDepCount == 0 && len(c.newDeps) == 0 {
				c.removedDepCount++
			}
			return
		}
	}
}

// GetPopulation returns the current population of the species at index.
func (c *Compartment) GetPopulation(index int) int64 { return c.x[index].pop }

// SetPopulationNoUpdate sets a population without notifying dependents.
func (c *Compartment) SetPopulationNoUpdate(index int, pop int64) { c.x[index].pop = pop }

// ModifyPopulationNoUpdate adjusts a population without notifying dependents.
func (c *Compartment) ModifyPopulationNoUpdate(index int, delta int64) { c.x[index].pop += delta }

// SetPopulation sets a population and notifies every dependent reaction.
func (c *Compartment) SetPopulation(index int, pop int64) {
	c.SetPopulationNoUpdate(index, pop)
	c.triggerUpdate(index)
}

// ModifyPopulation adjusts a population and notifies every dependent reaction.
func (c *Compartment) ModifyPopulation(index int, delta int64) {
	c.ModifyPopulationNoUpdate(index, delta)
	c.triggerUpdate(index)
}

func (c *Compartment) triggerUpdate(index int) {
	i := 0
	if index > 0 {
		i = c.x[index-1].depEnd
	}
	last := c.x[index].depEnd
	for ; i < last; i++ {
		if c.dependencies[i] != nil {
			c.dependencies[i].PopUpdate()
		}
	}
}

// RebuildDependencies merges the pending-addition buffer into the
// dependency array, dropping tombstoned entries, in a single forward pass
// over species index order. Must be called after any AddDependency or
// RemoveDependency call and before the next population change.
func (c *Compartment) RebuildDependencies() {
	if c.chemicalCount == 0 {
		return
	}

	newDepCount := c.x[c.chemicalCount-1].depEnd + len(c.newDeps) - c.removedDepCount
	newDepArray := make([]PopUpdater, newDepCount)

	sort.SliceStable(c.newDeps, func(i, j int) bool { return c.newDeps[i].index < c.newDeps[j].index })

	destDep, origDep, newDepI := 0, 0, 0
	for i := 0; i < c.chemicalCount; i++ {
		for origDep < c.x[i].depEnd {
			if c.dependencies[origDep] != nil {
				newDepArray[destDep] = c.dependencies[origDep]
				destDep++
			}
			origDep++
		}
		for newDepI < len(c.newDeps) && c.newDeps[newDepI].index == i {
			newDepArray[destDep] = c.newDeps[newDepI].reaction
			destDep++
			newDepI++
		}
		c.x[i].depEnd = destDep
	}

	c.dependencies = newDepArray[:destDep]
	c.removedDepCount = 0
	c.newDeps = nil
}

// WaitList returns the compartment's delayed-release wait list.
func (c *Compartment) WaitList() *WaitList { return &c.waitList }

// Simulation returns the simulation this compartment belongs to.
func (c *Compartment) Simulation() *Simulation { return c.sim }
