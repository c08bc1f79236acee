package sgns

import "math"

// NoCompartmentSplit marks a SplitCompartments command that destroys its
// split-off compartments immediately rather than setting them aside for a
// later InsertSplitCompartments.
const NoCompartmentSplit = -1

// Context is the mutable state an initialization Program runs against: a
// "working set" of compartments every selection/mutation command acts on,
// the named-compartment table SelectCompartment/InstantiateNamedCompartment
// address by index, and the split-buffer side channels SplitPopulation/
// SplitCompartments and their *FromSplitBuffer/InsertSplitCompartments
// counterparts pass values through. splitCompartmentBuffer replaces the
// original's trick of reinterpreting a split-buffer population slot as a
// raw HierCompartment* linked list — Go has no safe equivalent of that cast,
// and a separate, properly-typed map serves exactly the same role.
type Context struct {
	sim *Simulation

	compartments      []*HierCompartment
	env               *HierCompartment
	namedCompartments []*HierCompartment

	splitBuffer            []int64
	splitCompartmentBuffer map[int][]*HierCompartment
}

// NewContext creates the top-level Context for a simulation's initial
// setup: instantiates (and, if envType is a root type, seeds with its
// reaction bank) the root Env compartment.
func NewContext(sim *Simulation, envType *CompartmentType) *Context {
	return &Context{
		sim:                    sim,
		env:                    envType.InstantiateRoot(sim),
		splitCompartmentBuffer: make(map[int][]*HierCompartment),
	}
}

// NewContextIn creates a Context for a run-time init command sequence
// (e.g. triggered by a reaction's Extra action) scoped to an existing
// compartment: the named-compartment table is pre-filled with in and every
// ancestor of in, indexed by each ancestor's own type's depth.
func NewContextIn(in *HierCompartment) *Context {
	depth := in.Type().Depth()
	named := make([]*HierCompartment, depth+1)
	i, c := depth, in
	for c != nil {
		named[i] = c
		i--
		c = c.Container()
	}
	return &Context{
		sim:                    in.Simulation(),
		namedCompartments:      named,
		env:                    named[0],
		splitCompartmentBuffer: make(map[int][]*HierCompartment),
	}
}

// Env returns the root compartment this Context was built around.
func (ctx *Context) Env() *HierCompartment { return ctx.env }

func (ctx *Context) splitContext() *SplitContext {
	return &SplitContext{RNG: ctx.sim.RNG(), Buffer: ctx.splitBuffer}
}

func (ctx *Context) setSplitBufferSlot(i int, v int64) {
	if i >= len(ctx.splitBuffer) {
		buf := make([]int64, i+1)
		copy(buf, ctx.splitBuffer)
		ctx.splitBuffer = buf
	}
	ctx.splitBuffer[i] = v
}

func (ctx *Context) getSplitBufferSlot(i int) int64 {
	if i >= len(ctx.splitBuffer) {
		return 0
	}
	return ctx.splitBuffer[i]
}

// Command is one step of an initialization program: a selection that
// changes the working compartment set, or a mutation applied to it.
type Command interface {
	Execute(ctx *Context)
}

// Program is a sequence of Commands run in order against a single Context.
type Program []Command

// Run executes every command in the program against ctx.
func (p Program) Run(ctx *Context) {
	for _, cmd := range p {
		cmd.Execute(ctx)
	}
}

// SelectEnv sets the working set to just the root Env compartment.
type SelectEnv struct{}

func (SelectEnv) Execute(ctx *Context) {
	ctx.compartments = []*HierCompartment{ctx.env}
}

// SelectCompartmentType replaces the working set with every direct
// subcompartment, of every currently-selected compartment, whose type is
// subType.
type SelectCompartmentType struct {
	SubType *CompartmentType
}

func (s SelectCompartmentType) Execute(ctx *Context) {
	var next []*HierCompartment
	for _, comp := range ctx.compartments {
		for sub := comp.FirstSubCompartment(); sub != nil; sub = sub.NextInContainer() {
			if sub.Type() == s.SubType {
				next = append(next, sub)
			}
		}
	}
	ctx.compartments = next
}

// SelectCompartment sets the working set to the single named compartment
// at index NamedIndex.
type SelectCompartment struct {
	NamedIndex int
}

func (s SelectCompartment) Execute(ctx *Context) {
	ctx.compartments = []*HierCompartment{ctx.namedCompartments[s.NamedIndex]}
}

// InstantiateNamedCompartment creates a new compartment of Type inside the
// working set's (single) compartment and records it in the named-
// compartment table at NamedIndex.
type InstantiateNamedCompartment struct {
	NamedIndex int
	Type       *CompartmentType
}

func (c InstantiateNamedCompartment) Execute(ctx *Context) {
	container := ctx.compartments[0]
	newComp := c.Type.InstantiateIn(container)
	if c.NamedIndex == len(ctx.namedCompartments) {
		ctx.namedCompartments = append(ctx.namedCompartments, newComp)
	} else {
		ctx.namedCompartments[c.NamedIndex] = newComp
	}
}

// InstantiateCompartments creates N new compartments of Type inside each
// compartment in the working set.
type InstantiateCompartments struct {
	Type *CompartmentType
	N    int
}

func (c InstantiateCompartments) Execute(ctx *Context) {
	for _, comp := range ctx.compartments {
		for i := 0; i < c.N; i++ {
			c.Type.InstantiateIn(comp)
		}
	}
}

// SetPopulations sets (or, if Add, adds to) the population of the species
// at Index in every compartment in the working set, drawing a fresh sample
// from Distr per compartment.
type SetPopulations struct {
	Index int
	Distr RuntimeDistribution
	Add   bool
}

func (c SetPopulations) Execute(ctx *Context) {
	for _, comp := range ctx.compartments {
		n := int64(math.Floor(c.Distr.Sample(ctx.sim.RNG())))
		if c.Add {
			comp.ModifyPopulation(c.Index, n)
		} else {
			comp.SetPopulation(c.Index, n)
		}
	}
}

// AddToWaitList schedules a delayed release of the species at Index into
// every compartment in the working set, drawing a fresh amount (from
// Amount) and delay (from When) per compartment. When AddBaseTime is set,
// When is interpreted relative to the simulation's current time rather
// than as an absolute time.
type AddToWaitList struct {
	Index       int
	Amount      RuntimeDistribution
	When        RuntimeDistribution
	AddBaseTime bool
}

func (c AddToWaitList) Execute(ctx *Context) {
	baseTime := 0.0
	if c.AddBaseTime {
		baseTime = ctx.sim.Time()
	}
	for _, comp := range ctx.compartments {
		n := int64(math.Floor(c.Amount.Sample(ctx.sim.RNG())))
		t := baseTime + c.When.Sample(ctx.sim.RNG())
		comp.WaitList().ReleaseAt(t, c.Index, n)
	}
}

// SplitPopulation splits the population of ChemicalIndex in every
// compartment in the working set via Split, leaving the remainder in each
// compartment and accumulating the total taken amount into SplitIndex's
// slot in the split buffer.
type SplitPopulation struct {
	ChemicalIndex int
	SplitIndex    int
	Split         SplitFunction
}

func (c SplitPopulation) Execute(ctx *Context) {
	sctx := ctx.splitContext()
	var taken int64
	for _, comp := range ctx.compartments {
		n := comp.GetPopulation(c.ChemicalIndex)
		remaining, t := c.Split.Split(n, sctx)
		comp.SetPopulation(c.ChemicalIndex, remaining)
		taken += t
	}
	ctx.setSplitBufferSlot(c.SplitIndex, taken)
}

// AddPopulationFromSplitBuffer adds the amount recorded at SplitIndex in
// the split buffer to ChemicalIndex in every compartment in the working
// set.
type AddPopulationFromSplitBuffer struct {
	ChemicalIndex int
	SplitIndex    int
}

func (c AddPopulationFromSplitBuffer) Execute(ctx *Context) {
	pop := ctx.getSplitBufferSlot(c.SplitIndex)
	for _, comp := range ctx.compartments {
		comp.ModifyPopulation(c.ChemicalIndex, pop)
	}
}

// AddToWaitListFromSplitBuffer schedules a delayed release, of the amount
// recorded at SplitIndex in the split buffer, into every compartment in
// the working set.
type AddToWaitListFromSplitBuffer struct {
	ChemicalIndex int
	SplitIndex    int
	When          RuntimeDistribution
}

func (c AddToWaitListFromSplitBuffer) Execute(ctx *Context) {
	pop := ctx.getSplitBufferSlot(c.SplitIndex)
	baseTime := ctx.sim.Time()
	for _, comp := range ctx.compartments {
		t := baseTime + c.When.Sample(ctx.sim.RNG())
		comp.WaitList().ReleaseAt(t, c.ChemicalIndex, pop)
	}
}

// SplitCompartments splits the working set of compartments itself: Split
// decides how many of the N selected compartments are kept (the rest are
// split off), and CompSplitIndex says what happens to the split-off ones —
// destroyed immediately if NoCompartmentSplit, otherwise orphaned and
// recorded in the split-compartment buffer at CompSplitIndex for a later
// InsertSplitCompartments. The number split off is also recorded, as a
// population count, at SplitIndex in the ordinary split buffer.
type SplitCompartments struct {
	SplitIndex     int
	CompSplitIndex int
	Split          SplitFunction
}

func (c SplitCompartments) Execute(ctx *Context) {
	// Flush pending update-list work first so no stale Update() call
	// reaches into a reaction bank this command is about to tear down.
	ctx.sim.Update()

	n := int64(len(ctx.compartments))
	remaining, taken := c.Split.Split(n, ctx.splitContext())
	ctx.setSplitBufferSlot(c.SplitIndex, taken)

	var splitOff []*HierCompartment
	if remaining < n {
		toRemove := n - remaining
		rng := ctx.sim.RawRNG()
		kept := ctx.compartments[:0]
		for _, comp := range ctx.compartments {
			if toRemove > 0 && rng.Int63n(n) < toRemove {
				if c.CompSplitIndex == NoCompartmentSplit {
					comp.Destroy()
				} else {
					comp.OrphanCompartment()
					splitOff = append(splitOff, comp)
				}
				toRemove--
			} else {
				kept = append(kept, comp)
			}
			n--
		}
		ctx.compartments = kept
	}

	if c.CompSplitIndex != NoCompartmentSplit {
		ctx.splitCompartmentBuffer[c.CompSplitIndex] = splitOff
	}
}

// InsertSplitCompartments moves every compartment recorded at SplitIndex
// in the split-compartment buffer into the working set's (single)
// compartment.
type InsertSplitCompartments struct {
	SplitIndex int
}

func (c InsertSplitCompartments) Execute(ctx *Context) {
	list := ctx.splitCompartmentBuffer[c.SplitIndex]
	delete(ctx.splitCompartmentBuffer, c.SplitIndex)

	container := ctx.compartments[0]
	for _, comp := range list {
		comp.MoveCompartmentInto(container)
	}
}

// DeleteCompartments destroys every compartment in the working set.
type DeleteCompartments struct{}

func (DeleteCompartments) Execute(ctx *Context) {
	ctx.sim.Update()
	for _, comp := range ctx.compartments {
		comp.Destroy()
	}
	ctx.compartments = nil
}

// UpdateSimulation flushes the simulation's pending update list.
type UpdateSimulation struct{}

func (UpdateSimulation) Execute(ctx *Context) { ctx.sim.Update() }
