package sgns

// BankTemplate tracks how many live instances of a reaction bank exist and
// must be sealed — no further reactions registered — before the first
// instantiation. IntraBankTemplate is the only implementation; the
// interface exists so BankInstance can hold a reference back to whichever
// kind of template it came from without an import cycle.
type BankTemplate interface {
	Seal()
	IsSealed() bool
	DestroyInstance(inst *BankInstance)
}

// BankInstance is one compartment's realized set of reaction instances
// from a sealed IntraBankTemplate: one ReactionInstance per reaction the
// template defines, in registration order.
type BankInstance struct {
	tmplate   BankTemplate
	instances []ReactionInstance
}

// ReactionInstanceAt returns the index'th reaction instance in this bank,
// in the order its template registered them via CreateReaction.
func (bi *BankInstance) ReactionInstanceAt(index int) ReactionInstance { return bi.instances[index] }

// Destroy tears down every reaction instance in the bank and reports the
// bank's destruction to the template that created it.
func (bi *BankInstance) Destroy() {
	bi.tmplate.DestroyInstance(bi)
}

// targettedTemplate pairs a reaction template with where its umbrella
// reaction (if any) comes from: umbrellaID identifies it within the bank
// parentBankID compartments up from the one being instantiated into (0 is
// that compartment's own bank), with umbrellaID == -1 meaning the
// reaction has no umbrella and runs as a free reaction in the compartment
// being instantiated into.
type targettedTemplate struct {
	parentBankID int
	umbrellaID   int
	tmplate      *Template
}

const noUmbrella = -1

// IntraBankTemplate is the set of reactions that can occur within a single
// compartment — some of which may be umbrella reactions spanning multiple
// compartments via a parent bank context. Reaction registration
// (CreateReaction) must happen before Seal; instantiation (Instantiate)
// must happen after.
type IntraBankTemplate struct {
	instances int
	sealed    bool

	templates []targettedTemplate
}

// NewIntraBankTemplate creates an empty, unsealed bank template.
func NewIntraBankTemplate() *IntraBankTemplate {
	return &IntraBankTemplate{}
}

// Seal stops any new reactions from being registered, permitting
// instantiation.
func (bt *IntraBankTemplate) Seal() { bt.sealed = true }

// IsSealed reports whether Seal has been called.
func (bt *IntraBankTemplate) IsSealed() bool { return bt.sealed }

// ReactionCount returns how many reactions this bank defines.
func (bt *IntraBankTemplate) ReactionCount() int { return len(bt.templates) }

// ReactionTemplate returns the id'th reaction's template, for configuring
// its reactants, products, and extras before the bank is sealed.
func (bt *IntraBankTemplate) ReactionTemplate(id int) *Template { return bt.templates[id].tmplate }

// CreateReaction registers a new reaction in this bank and returns its id.
// umbrella and fireOnce set the resulting Template's flags. When the
// reaction is itself bound to another reaction's umbrella (rather than
// running as a free reaction directly in the compartment being
// instantiated into), parentBank and umbrellaID identify that umbrella's
// position: parentBank counts how many compartments up that umbrella's
// bank lives (0 is this bank itself, whose umbrella must already be
// registered; 1 is the container's bank, and so on), and umbrellaID
// indexes into that bank's own reactions.
func (bt *IntraBankTemplate) CreateReaction(parentBank, umbrellaID int, umbrella, fireOnce bool) int {
	if bt.sealed {
		panic("sgns: CreateReaction called on a sealed IntraBankTemplate")
	}
	id := len(bt.templates)
	bt.templates = append(bt.templates, targettedTemplate{
		parentBankID: parentBank,
		umbrellaID:   umbrellaID,
		tmplate:      NewTemplate(umbrella, fireOnce),
	})
	return id
}

// CreateFreeReaction registers a reaction with no umbrella — a reaction
// that runs as a direct reaction of the compartment it's instantiated
// into, rather than nested inside another reaction's umbrella.
func (bt *IntraBankTemplate) CreateFreeReaction(umbrella, fireOnce bool) int {
	return bt.CreateReaction(0, noUmbrella, umbrella, fireOnce)
}

// Instantiate creates a new BankInstance of this template in compartment
// in. context supplies the ancestors' BankInstances, indexed by each
// ancestor's type depth, for umbrella-targeted reactions whose umbrella
// lives in an ancestor's bank; it may be nil if no reaction in this bank
// targets an ancestor's umbrella.
func (bt *IntraBankTemplate) Instantiate(in *Compartment, context []*BankInstance) *BankInstance {
	if !bt.sealed {
		panic("sgns: Instantiate called on an unsealed IntraBankTemplate")
	}

	bi := &BankInstance{tmplate: bt, instances: make([]ReactionInstance, len(bt.templates))}
	ctx := []*Compartment{in}

	for i, tt := range bt.templates {
		if tt.umbrellaID == noUmbrella {
			bi.instances[i] = tt.tmplate.Instantiate(ctx, nil)
			continue
		}
		var parent ReactionInstance
		if tt.parentBankID == 0 {
			parent = bi.instances[tt.umbrellaID]
		} else {
			parent = context[len(context)-tt.parentBankID].ReactionInstanceAt(tt.umbrellaID)
		}
		umbrella, ok := parent.(*UmbrellaInstance)
		if !ok {
			panic("sgns: umbrella-targeted reaction's parent reaction is not an umbrella")
		}
		bi.instances[i] = tt.tmplate.Instantiate(ctx, umbrella)
	}

	bt.instances++

	return bi
}

// DestroyInstance closes every reaction instance in bi and removes it
// from this template's live-instance count. bi must have been created by
// this template's Instantiate.
func (bt *IntraBankTemplate) DestroyInstance(bi *BankInstance) {
	for _, inst := range bi.instances {
		inst.Close()
	}
	bt.instances--
}
