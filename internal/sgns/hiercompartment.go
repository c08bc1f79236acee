package sgns

// HierCompartment is a Compartment placed in a tree of compartments: it has
// a container (parent), a singly-linked list of siblings sharing that
// container, and a singly-linked list of its own children. Each one is
// stamped with a CompartmentType, which owns the reaction bank it
// instantiates into every HierCompartment of that type.
type HierCompartment struct {
	Compartment

	instantiationIndex int
	mainBank           *BankInstance

	container         *HierCompartment
	nextInContainer   *HierCompartment
	toMeInContainer   **HierCompartment
	firstSubCompartment *HierCompartment

	myType *CompartmentType
}

// NewHierCompartment allocates a compartment of the given type inside sim,
// not yet attached to any container — callers must follow up with
// moveCompartmentInto (or CompartmentType.Instantiate, which does this for
// them) before the compartment's reactions exist. Begin is called here,
// immediately after the embedded Compartment finishes constructing, exactly
// once, matching the source this is grounded on: a HierCompartment must
// already be scheduled before any reaction bank gets attached to it.
//
// The embedded Compartment is initialized in place on hc, not built
// separately via NewCompartment and assigned in — a value copy after init
// would leave the UmbrellaInstance's and WaitList's closures bound to the
// address of a throwaway Compartment instead of hc's own.
func NewHierCompartment(typ *CompartmentType, sim *Simulation) *HierCompartment {
	hc := &HierCompartment{
		instantiationIndex: sim.NewCompartmentInstantiation(),
		myType:             typ,
	}
	hc.Compartment.init(sim, typ.ChemicalCount())
	hc.Begin()
	return hc
}

func (hc *HierCompartment) InstantiationIndex() int        { return hc.instantiationIndex }
func (hc *HierCompartment) Container() *HierCompartment    { return hc.container }
func (hc *HierCompartment) NextInContainer() *HierCompartment { return hc.nextInContainer }
func (hc *HierCompartment) FirstSubCompartment() *HierCompartment { return hc.firstSubCompartment }
func (hc *HierCompartment) Type() *CompartmentType          { return hc.myType }
func (hc *HierCompartment) MainReactionBank() *BankInstance  { return hc.mainBank }
func (hc *HierCompartment) SetMainReactionBank(b *BankInstance) { hc.mainBank = b }

// Destroy tears the compartment and its entire subtree down: unlink from
// the container first, then neutralize timing/update propagation (so
// destroying children's reactions doesn't ripple stale events up the
// heap), destroy every subcompartment, drop the reaction bank, and finally
// let the simulation know its structure changed.
func (hc *HierCompartment) Destroy() {
	if hc.container != nil {
		*hc.toMeInContainer = hc.nextInContainer
		if hc.nextInContainer != nil {
			hc.nextInContainer.toMeInContainer = hc.toMeInContainer
		}
	}

	hc.UmbrellaInstance.inner.SetOnNewMin(nil)

	for hc.firstSubCompartment != nil {
		hc.firstSubCompartment.Destroy()
	}

	if hc.mainBank != nil {
		hc.mainBank.Destroy()
		hc.mainBank = nil
	}
	hc.UmbrellaInstance.Close()
	hc.sim.Update()
}

// OrphanCompartment detaches the compartment from its current container
// (if any) and tears down every reaction bank in its subtree without
// destroying any of the HierCompartment objects themselves — they remain
// alive, ready for MoveCompartmentInto to reattach them elsewhere.
func (hc *HierCompartment) OrphanCompartment() {
	if hc.container == nil {
		return
	}
	*hc.toMeInContainer = hc.nextInContainer
	if hc.nextInContainer != nil {
		hc.nextInContainer.toMeInContainer = hc.toMeInContainer
	}
	hc.container = nil

	hc.adjustTime()
	hc.orphanNoRelease()
}

// MoveCompartmentInto relocates an orphaned (or currently-contained, which
// is orphaned first) compartment into newContainer's child list, then asks
// the compartment's type to reinstantiate its own reaction bank for the new
// context. Descendants are left bankless until moved themselves — matching
// the source this is grounded on, which only reinstates the moved node.
func (hc *HierCompartment) MoveCompartmentInto(newContainer *HierCompartment) {
	if hc.container != nil {
		hc.OrphanCompartment()
	}

	hc.container = newContainer
	if newContainer.firstSubCompartment != nil {
		newContainer.firstSubCompartment.toMeInContainer = &hc.nextInContainer
	}
	hc.nextInContainer = newContainer.firstSubCompartment
	newContainer.firstSubCompartment = hc
	hc.toMeInContainer = &newContainer.firstSubCompartment

	hc.myType.InstantiateBankIn(hc)
}

func (hc *HierCompartment) orphanNoRelease() {
	for comp := hc.firstSubCompartment; comp != nil; comp = comp.nextInContainer {
		comp.orphanNoRelease()
	}
	if hc.mainBank != nil {
		hc.mainBank.Destroy()
		hc.mainBank = nil
	}
}
