package sgns

// Chemical identifies a species by name across the whole model. A single
// Chemical can appear in many CompartmentTypes, each assigning it its own
// local index — GetChemicalIndex below is how a CompartmentType tracks
// that mapping.
type Chemical struct {
	name           string
	outputChemical bool
}

// NewChemical creates a chemical species with the given name, included in
// output files by default.
func NewChemical(name string) *Chemical {
	return &Chemical{name: name, outputChemical: true}
}

// Name returns the chemical's name.
func (c *Chemical) Name() string { return c.name }

// ShouldOutput reports whether this chemical should appear in output files.
func (c *Chemical) ShouldOutput() bool { return c.outputChemical }

// SetOutput sets whether this chemical should appear in output files.
func (c *Chemical) SetOutput(output bool) { c.outputChemical = output }

// CompartmentType instantiates HierCompartments and owns the reaction bank
// template they each get their own BankInstance of. Types form a tree via
// superType (e.g. Cell -> Nucleus): depth counts ancestors, and
// instantiateBankIn walks that chain to gather the parent banks any
// umbrella-targeted reaction in this type's bank needs.
type CompartmentType struct {
	name      string
	depth     int
	superType *CompartmentType

	reactions *IntraBankTemplate

	chemicals       []*Chemical
	chemicalIndices map[*Chemical]int

	outputCompartment bool
}

// NewCompartmentType creates a compartment type named name, optionally as
// a subtype of parentType (nil for a root type).
func NewCompartmentType(name string, parentType *CompartmentType) *CompartmentType {
	depth := 0
	if parentType != nil {
		depth = parentType.depth + 1
	}
	return &CompartmentType{
		name:              name,
		depth:             depth,
		superType:         parentType,
		reactions:         NewIntraBankTemplate(),
		chemicalIndices:   make(map[*Chemical]int),
		outputCompartment: true,
	}
}

// Bank returns the reaction bank template instantiated into every
// compartment of this type.
func (ct *CompartmentType) Bank() *IntraBankTemplate { return ct.reactions }

// InstantiateIn creates a new subcompartment of this type inside in, which
// must itself be of this type's parent type.
func (ct *CompartmentType) InstantiateIn(in *HierCompartment) *HierCompartment {
	newInst := NewHierCompartment(ct, in.Simulation())
	newInst.MoveCompartmentInto(in)
	return newInst
}

// InstantiateRoot creates a new, unparented compartment of this type
// directly in sim. Root types (no superType) get their reaction bank
// instantiated immediately; subtypes get no bank until moved into a
// container via InstantiateIn/MoveCompartmentInto.
func (ct *CompartmentType) InstantiateRoot(sim *Simulation) *HierCompartment {
	newInst := NewHierCompartment(ct, sim)
	if ct.superType == nil {
		newInst.SetMainReactionBank(ct.reactions.Instantiate(&newInst.Compartment, nil))
		newInst.RebuildDependencies()
	}
	return newInst
}

// GetChemicalIndex returns the local index of chemical within this type,
// or -1 if it isn't present.
func (ct *CompartmentType) GetChemicalIndex(chemical *Chemical) int {
	if idx, ok := ct.chemicalIndices[chemical]; ok {
		return idx
	}
	return -1
}

// GetOrAddChemicalIndex returns chemical's local index within this type,
// adding it (growing ChemicalCount by one) if it isn't already present.
func (ct *CompartmentType) GetOrAddChemicalIndex(chemical *Chemical) int {
	if idx, ok := ct.chemicalIndices[chemical]; ok {
		return idx
	}
	idx := len(ct.chemicals)
	ct.chemicals = append(ct.chemicals, chemical)
	ct.chemicalIndices[chemical] = idx
	return idx
}

// Depth returns the number of ancestors this compartment type has.
func (ct *CompartmentType) Depth() int { return ct.depth }

// ChemicalCount returns the number of distinct chemical species declared
// in this compartment type.
func (ct *CompartmentType) ChemicalCount() int { return len(ct.chemicals) }

// ChemicalAt returns the chemical declared at local index idx.
func (ct *CompartmentType) ChemicalAt(idx int) *Chemical { return ct.chemicals[idx] }

// ParentType returns this type's parent type, or nil for a root type.
func (ct *CompartmentType) ParentType() *CompartmentType { return ct.superType }

// Name returns the compartment type's name.
func (ct *CompartmentType) Name() string { return ct.name }

// ShouldOutput reports whether compartments of this type should be
// included in output files.
func (ct *CompartmentType) ShouldOutput() bool { return ct.outputCompartment }

// SetOutput sets whether compartments of this type should be included in
// output files.
func (ct *CompartmentType) SetOutput(output bool) { ct.outputCompartment = output }

// IsSubtypeOf reports whether this type is type, or a descendant of it.
func (ct *CompartmentType) IsSubtypeOf(typ *CompartmentType) bool {
	t2 := ct
	for t2.depth > typ.depth {
		t2 = t2.superType
	}
	return t2 == typ
}

// InstantiateBankIn instantiates this type's reaction bank inside an
// already-positioned HierCompartment, gathering the parent banks any
// umbrella-targeted reaction in this type's bank needs by walking up the
// container chain and indexing by each ancestor's own type's depth.
func (ct *CompartmentType) InstantiateBankIn(in *HierCompartment) {
	var parentBanks []*BankInstance
	for comp := in.Container(); comp != nil; comp = comp.Container() {
		d := comp.Type().Depth()
		if d >= len(parentBanks) {
			grown := make([]*BankInstance, d+1)
			copy(grown, parentBanks)
			parentBanks = grown
		}
		parentBanks[d] = comp.MainReactionBank()
	}

	in.SetMainReactionBank(ct.reactions.Instantiate(&in.Compartment, parentBanks))
	in.RebuildDependencies()
}
