package config

import "testing"

func TestBuildModelFromConfigRejectsInvalidModel(t *testing.T) {
	cfg := ModelConfig{}
	if _, err := BuildModelFromConfig(cfg); err == nil {
		t.Fatal("expected BuildModelFromConfig to reject an empty, invalid config")
	}
}

func TestBuildModelFromConfigResolvesChemicalsAndTypes(t *testing.T) {
	cfg := baseValidModel()
	m, err := BuildModelFromConfig(cfg)
	if err != nil {
		t.Fatalf("BuildModelFromConfig: %v", err)
	}
	if _, ok := m.Chemicals["A"]; !ok {
		t.Error("expected chemical A to be built")
	}
	ct, ok := m.CompartmentTypes["env"]
	if !ok {
		t.Fatal("expected compartment type env to be built")
	}
	if ct.ParentType() != nil {
		t.Error("expected env to be a root compartment type")
	}
	if len(m.Init) != 1 {
		t.Errorf("expected 1 init command, got %d", len(m.Init))
	}
}

func TestBuildModelFromConfigWiresParentChildTypes(t *testing.T) {
	cfg := ModelConfig{
		Name:      "nested",
		Chemicals: []ChemicalConfig{{Name: "A"}},
		CompartmentTypes: []CompartmentTypeConfig{
			{Name: "env", Chemicals: []string{"A"}},
			{Name: "daughter", Parent: "env", Chemicals: []string{"A"}},
		},
	}
	m, err := BuildModelFromConfig(cfg)
	if err != nil {
		t.Fatalf("BuildModelFromConfig: %v", err)
	}
	daughter := m.CompartmentTypes["daughter"]
	if daughter.ParentType() != m.CompartmentTypes["env"] {
		t.Error("expected daughter's parent type to be env")
	}
	if !daughter.IsSubtypeOf(m.CompartmentTypes["env"]) {
		t.Error("expected daughter to be a subtype of env")
	}
}

func TestBuildModelFromConfigRejectsUnknownParentReaction(t *testing.T) {
	cfg := baseValidModel()
	cfg.CompartmentTypes[0].Reactions = append(cfg.CompartmentTypes[0].Reactions, ReactionConfig{
		ID:             "nested",
		C:              1.0,
		Reactants:      []ReactantConfig{{Species: "A", Amount: 1}},
		ParentReaction: "ghost",
	})
	if _, err := BuildModelFromConfig(cfg); err == nil {
		t.Fatal("expected an error when a reaction references a nonexistent parent reaction")
	}
}

func TestBuildRateFromConfig(t *testing.T) {
	cases := []struct {
		kind string
		cfg  RateConfig
		x    int64
		want float64
	}{
		{"unit", RateConfig{Kind: "unit"}, 5, 1},
		{"linear", RateConfig{Kind: "linear"}, 5, 5},
		{"gilh", RateConfig{Kind: "gilh", N: 2}, 5, 10},
		{"min", RateConfig{Kind: "min", A: 3}, 10, 3},
		{"max", RateConfig{Kind: "max", A: 3}, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			rf, err := BuildRateFromConfig(tc.cfg)
			if err != nil {
				t.Fatalf("BuildRateFromConfig: %v", err)
			}
			if got := rf.Evaluate(tc.x); got != tc.want {
				t.Errorf("Evaluate(%d) = %v, want %v", tc.x, got, tc.want)
			}
		})
	}
}

func TestBuildRateFromConfigRejectsUnknownKind(t *testing.T) {
	if _, err := BuildRateFromConfig(RateConfig{Kind: "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown rate kind")
	}
}

func TestBuildSplitFromConfigRejectsUnknownKind(t *testing.T) {
	if _, err := BuildSplitFromConfig(SplitConfig{Kind: "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown split kind")
	}
}

func TestBuildDistributionFromConfigRejectsUnknownKind(t *testing.T) {
	if _, err := BuildDistributionFromConfig(DistributionConfig{Kind: "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown distribution kind")
	}
}

func TestBuildProgramFromConfigResolvesSetPopulations(t *testing.T) {
	cfg := baseValidModel()
	cfg.Init = []CommandConfig{
		{Kind: "select_env"},
		{Kind: "set_populations", Chemical: "A", Distribution: &DistributionConfig{Kind: "delta", C: 10}},
	}
	m, err := BuildModelFromConfig(cfg)
	if err != nil {
		t.Fatalf("BuildModelFromConfig: %v", err)
	}
	if len(m.Init) != 2 {
		t.Fatalf("expected 2 init commands, got %d", len(m.Init))
	}
}

func TestBuildProgramFromConfigRejectsUnknownChemical(t *testing.T) {
	cfg := baseValidModel()
	cfg.Init = []CommandConfig{
		{Kind: "set_populations", Chemical: "Ghost", Distribution: &DistributionConfig{Kind: "delta", C: 10}},
	}
	if _, err := BuildModelFromConfig(cfg); err == nil {
		t.Fatal("expected an error for an init command referencing an unknown chemical")
	}
}
