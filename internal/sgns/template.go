package sgns

// ReactionInstance is whatever a Template.Instantiate call hands back: an
// ordinary Instance or an UmbrellaInstance, whichever the template's flags
// call for. Both already satisfy Stream and PopUpdater; this just names
// the combination every bank slot needs.
type ReactionInstance interface {
	Stream
	PopUpdater
	Begin()
	Close()
}

// HEvaluator computes a reaction's H-function (the population-dependent
// part of its propensity) from its reactant list. The default is the
// product of every reactant's own rate function; SetHEvaluator overrides
// it for reactions that need custom, cross-reactant math.
type HEvaluator func(ctx []*Compartment, firstReactant *Reactant) float64

func defaultHEval(ctx []*Compartment, r *Reactant) float64 {
	h := 1.0
	for ; r != nil; r = r.next {
		h *= r.Evaluate(ctx)
	}
	return h
}

// Extra is an additional action a reaction performs beyond consuming
// reactants and releasing products — compartment construction/destruction
// tied to a firing is the main use. The original chains these through a
// manual singly-linked list; a Template here just holds them in a slice,
// appended in registration order and run newest-first on execution (the
// same order the original's prepend-to-head list produces).
type Extra interface {
	Execute(tmplate *Template, ctx []*Compartment)
}

// Template describes a reaction independent of any compartment it's bound
// to: its reactants, products, extra actions, stochastic constant, and
// whether it's an umbrella or fire-once reaction. Instantiate binds it to
// a specific context of compartments to produce a live ReactionInstance.
type Template struct {
	c float64

	firstReactant *Reactant
	firstProduct  *Product
	extras        []Extra

	isUmbrella bool
	firesOnce  bool

	nCompartments int

	hEval HEvaluator
}

// NewTemplate creates an empty reaction template. umbrella and fireOnce
// match the two special-case reaction kinds: an umbrella reaction owns a
// nested event queue of its own (used for hierarchical compartments and
// per-compartment pass-through); a fire-once reaction is dequeued and torn
// down the instant it fires, for reactions that destroy what they're
// bound to.
func NewTemplate(umbrella, fireOnce bool) *Template {
	return &Template{c: 1.0, isUmbrella: umbrella, firesOnce: fireOnce, hEval: defaultHEval}
}

// C returns the reaction's stochastic rate constant.
func (t *Template) C() float64 { return t.c }

// SetC sets the reaction's stochastic rate constant. Only affects
// instances created after the call.
func (t *Template) SetC(c float64) { t.c = c }

// CalcH evaluates the reaction's H-function against ctx.
func (t *Template) CalcH(ctx []*Compartment) float64 { return t.hEval(ctx, t.firstReactant) }

// Execute consumes every reactant and releases every product against ctx.
func (t *Template) Execute(ctx []*Compartment) {
	for r := t.firstReactant; r != nil; r = r.next {
		r.Consume(ctx)
	}
	for p := t.firstProduct; p != nil; p = p.next {
		p.Release(ctx)
	}
}

// ExecuteExtra runs every registered Extra action against ctx, most
// recently registered first.
func (t *Template) ExecuteExtra(ctx []*Compartment) {
	for i := len(t.extras) - 1; i >= 0; i-- {
		t.extras[i].Execute(t, ctx)
	}
}

// Instantiate binds this template to ctx (one *Compartment per slot the
// reaction's reactants/products index into) and creates a live
// ReactionInstance. parentUmbrella, if non-nil, is the umbrella reaction
// this one nests inside (for sub-reactions of a hierarchical bank); when
// nil, the instance is enqueued into ctx[0]'s own inner queue.
//
// Begin is called here, exactly once — the source this is grounded on
// calls it a second, redundant time from IntraBankTemplate::instantiate;
// that second call is harmless there only because Queue.Reposition on an
// instance whose propensity hasn't changed since Begin is a no-op past an
// extra RNG draw, so it is not reproduced here.
func (t *Template) Instantiate(ctx []*Compartment, parentUmbrella *UmbrellaInstance) ReactionInstance {
	q := ctx[0].Inner()
	if parentUmbrella != nil {
		q = parentUmbrella.Inner()
	}

	stoich := &templateStoich{c: t.c, tmplate: t, space: append([]*Compartment(nil), ctx...)}

	var inst ReactionInstance
	switch {
	case t.isUmbrella:
		inst = NewUmbrellaInstance(q, stoich)
	case t.firesOnce:
		inst = NewFireOnceInstance(q, stoich)
	default:
		inst = NewInstance(q, stoich)
	}
	stoich.inst = inst

	t.addDependencies(ctx, inst)
	inst.Begin()

	return inst
}

func (t *Template) addDependencies(ctx []*Compartment, inst ReactionInstance) {
	for r := t.firstReactant; r != nil; r = r.next {
		ctx[r.srcCompartment].AddDependency(r.srcIndex, inst)
	}
}

func (t *Template) removeDependencies(ctx []*Compartment, inst ReactionInstance) {
	for r := t.firstReactant; r != nil; r = r.next {
		ctx[r.srcCompartment].RemoveDependency(r.srcIndex, inst)
	}
}

// NewReactant adds a reactant to this template: pop units of the species
// at idx within compartment (an index into the eventual instantiation
// context, not a global compartment reference).
func (t *Template) NewReactant(idx int, pop int64, compartment int) *Reactant {
	if compartment+1 > t.nCompartments {
		t.nCompartments = compartment + 1
	}
	r := newReactant(pop, idx, compartment, t.firstReactant)
	t.firstReactant = r
	return r
}

// NewProduct adds a product to this template.
func (t *Template) NewProduct(idx int, pop int64, compartment int) *Product {
	if compartment+1 > t.nCompartments {
		t.nCompartments = compartment + 1
	}
	p := newProduct(pop, idx, compartment, t.firstProduct)
	t.firstProduct = p
	return p
}

// FirstReactant returns the head of the reaction's reactant list.
func (t *Template) FirstReactant() *Reactant { return t.firstReactant }

// FirstProduct returns the head of the reaction's product list.
func (t *Template) FirstProduct() *Product { return t.firstProduct }

// CompartmentCount returns how many distinct compartment slots this
// reaction's reactants and products reference.
func (t *Template) CompartmentCount() int { return t.nCompartments }

// FlipChemicalOrders reverses the order of both the reactant and product
// lists in place.
func (t *Template) FlipChemicalOrders() {
	var newReactants *Reactant
	for r := t.firstReactant; r != nil; {
		next := r.next
		r.next = newReactants
		newReactants = r
		r = next
	}
	t.firstReactant = newReactants

	var newProducts *Product
	for p := t.firstProduct; p != nil; {
		next := p.next
		p.next = newProducts
		newProducts = p
		p = next
	}
	t.firstProduct = newProducts
}

// AddExtra registers an Extra action to run whenever this reaction fires.
func (t *Template) AddExtra(extra Extra) {
	t.extras = append(t.extras, extra)
}

// IsUmbrellaReaction reports whether this template produces umbrella
// reaction instances.
func (t *Template) IsUmbrellaReaction() bool { return t.isUmbrella }

// SetHEvaluator overrides the reaction's H-function.
func (t *Template) SetHEvaluator(eval HEvaluator) { t.hEval = eval }

// templateStoich is the single concrete Stoichiometry implementation every
// reaction goes through: it forwards propensity/execution calls to the
// Template it was instantiated from, over the fixed slice of compartments
// it was bound to. The original parameterizes this by compartment count
// (TemplateStoich<1/2/3>) since C++ needs a fixed-size array per arity;
// Go's slices make that distinction unnecessary — one type serves every
// reaction arity.
type templateStoich struct {
	c       float64
	tmplate *Template
	space   []*Compartment

	// inst is the ReactionInstance this stoichiometry was bound into,
	// set immediately after construction in Instantiate. It exists
	// solely so Destroy can remove the right instance's dependencies —
	// the original reaches back to it via the enclosing object's `this`,
	// which Go's composition doesn't give for free.
	inst ReactionInstance
}

func (s *templateStoich) CalcMarkovA() float64 { return s.c * s.tmplate.CalcH(s.space) }
func (s *templateStoich) DoReaction()          { s.tmplate.Execute(s.space) }
func (s *templateStoich) DoReactionExtra()     { s.tmplate.ExecuteExtra(s.space) }
func (s *templateStoich) Destroy()             { s.tmplate.removeDependencies(s.space, s.inst) }
func (s *templateStoich) RNG() RandSource      { return s.space[0].Simulation().RNG() }
