package sgns

// Reactant is one term of a reaction's left-hand side: a species, the
// compartment it lives in (by index into the reaction's instantiation
// context, not a direct pointer), a rate function evaluated against its
// current population, and how much of it a firing consumes. Reactants
// chain into a singly-linked list off Template, mirroring the layout the
// original builds reactions with as they're parsed.
type Reactant struct {
	rate RateFunction

	// consumes is stored negated, so Consume can add it directly via
	// ModifyPopulation without a sign flip at the call site.
	consumes int64

	srcIndex       int
	srcCompartment int

	next *Reactant

	// hp0/hp1/hp2 are scratch coefficient slots for the named H-evaluator
	// closed set (fa2a1r, sshdimer), which needs extra per-reactant
	// parameters beyond the reactant's own rate function — mirroring the
	// original's reuse of each reactant's rate-function parameter slots
	// for exactly this purpose. defaultHEval never touches these.
	hp0, hp1, hp2 float64
}

func newReactant(amount int64, speciesIndex, compartmentIndex int, next *Reactant) *Reactant {
	r := &Reactant{srcIndex: speciesIndex, srcCompartment: compartmentIndex, next: next}
	r.rate = LinearRate()
	r.SetConsumes(amount)
	return r
}

// GetPopulationIn returns this reactant's species' current population
// within ctx.
func (r *Reactant) GetPopulationIn(ctx []*Compartment) int64 {
	return ctx[r.srcCompartment].GetPopulation(r.srcIndex)
}

// Evaluate applies the reactant's rate function to its current population.
func (r *Reactant) Evaluate(ctx []*Compartment) float64 {
	return r.rate.Evaluate(r.GetPopulationIn(ctx))
}

// Next returns the next reactant in the reaction's list, or nil.
func (r *Reactant) Next() *Reactant { return r.next }

// SetNext relinks the reactant's successor, used by Template.FlipChemicalOrders.
func (r *Reactant) SetNext(next *Reactant) { r.next = next }

// Consume applies this reactant's stoichiometric loss to its compartment.
func (r *Reactant) Consume(ctx []*Compartment) {
	ctx[r.srcCompartment].ModifyPopulation(r.srcIndex, r.consumes)
}

// RateFunc gives direct access to the reactant's rate function so callers
// building a reaction can configure it after construction.
func (r *Reactant) RateFunc() *RateFunction { return &r.rate }

// Consumes returns the (positive) amount of this species a firing removes.
func (r *Reactant) Consumes() int64 { return -r.consumes }

// SetConsumes sets the amount of this species a firing removes.
func (r *Reactant) SetConsumes(n int64) { r.consumes = -n }

// Index returns the species index within its compartment.
func (r *Reactant) Index() int { return r.srcIndex }

// CompartmentIndex returns this reactant's compartment's position in the
// reaction's instantiation context.
func (r *Reactant) CompartmentIndex() int { return r.srcCompartment }

// SetHParams stashes three scratch coefficients on the reactant for a
// named H-evaluator (fa2a1r, sshdimer) to read back via HParams. Unused
// outside of BuildNamedHEvaluator.
func (r *Reactant) SetHParams(p0, p1, p2 float64) { r.hp0, r.hp1, r.hp2 = p0, p1, p2 }

// HParams returns the three scratch coefficients SetHParams last stored.
func (r *Reactant) HParams() (p0, p1, p2 float64) { return r.hp0, r.hp1, r.hp2 }

// Product is one term of a reaction's right-hand side: a species, the
// compartment it lands in, how many are produced, and the delay
// distribution its release is drawn from (a zero/Delta(0) distribution
// means an instant, undelayed release).
type Product struct {
	tau RuntimeDistribution

	produces int64

	destCompartment int
	destIndex       int

	next *Product
}

func newProduct(amount int64, speciesIndex, compartmentIndex int, next *Product) *Product {
	return &Product{
		tau:             DeltaDistribution(0.0),
		produces:        amount,
		destCompartment: compartmentIndex,
		destIndex:       speciesIndex,
		next:            next,
	}
}

// Release delivers this product into its destination compartment: either
// immediately, or by scheduling a WaitList release at a delay drawn from
// its distribution.
func (p *Product) Release(ctx []*Compartment) {
	dest := ctx[p.destCompartment]
	if p.tau.IsZero() {
		dest.ModifyPopulation(p.destIndex, p.produces)
		return
	}
	sim := dest.Simulation()
	dt := p.tau.Sample(sim.RNG())
	dest.WaitList().ReleaseAt(sim.Time()+dt, p.destIndex, p.produces)
}

// Next returns the next product in the reaction's list, or nil.
func (p *Product) Next() *Product { return p.next }

// SetNext relinks the product's successor, used by Template.FlipChemicalOrders.
func (p *Product) SetNext(next *Product) { p.next = next }

// Tau gives direct access to the product's delay distribution.
func (p *Product) Tau() *RuntimeDistribution { return &p.tau }

// Produces returns the amount of this species a firing creates.
func (p *Product) Produces() int64 { return p.produces }

// SetProduces sets the amount of this species a firing creates.
func (p *Product) SetProduces(n int64) { p.produces = n }
