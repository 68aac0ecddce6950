// Package model defines the compound, decision and run types shared by the
// ingest, triage, report and store packages.
package model

// CompoundRecord holds every property known for one candidate ligand.
// Every property except Identifier may be absent; the triage stages
// substitute documented defaults for absent or unparsable values.
type CompoundRecord struct {
	Identifier          string `json:"identifier"`
	StructureDescriptor string `json:"structure_descriptor"`
	DockingScore        Number `json:"docking_score"`

	// Physicochemical descriptors.
	MolecularWeight Number `json:"molecular_weight"`
	TPSA            Number `json:"tpsa"`
	HBondDonors     Number `json:"h_bond_donors"`
	HBondAcceptors  Number `json:"h_bond_acceptors"`
	RotatableBonds  Number `json:"rotatable_bonds"`
	FractionSP3     Number `json:"fraction_sp3"`
	LogP            Number `json:"logp"`

	// Druglikeness and structural alerts.
	Lipinski               Flag   `json:"lipinski_pass"`
	PAINSAlert             Flag   `json:"pains_alert"`
	BrenkAlert             Flag   `json:"brenk_alert"`
	SyntheticAccessibility Number `json:"synthetic_accessibility"`
	QED                    Number `json:"qed"`

	// Toxicity predictions.
	HERG            RiskLevel `json:"herg_risk"`
	DILI            RiskLevel `json:"dili_risk"`
	Ames            Flag      `json:"ames_mutagenicity"`
	Carcinogenicity Flag      `json:"carcinogenicity"`

	// ADME risk flags.
	GIAbsorption         string `json:"gi_absorption,omitempty"`
	Caco2Permeability    string `json:"caco2_permeability,omitempty"`
	BBBPermeability      string `json:"bbb_permeability,omitempty"`
	PlasmaProteinBinding Number `json:"plasma_protein_binding"`
	CYP3A4Inhibition     Flag   `json:"cyp3a4_inhibition"`
	CYP2D6Inhibition     Flag   `json:"cyp2d6_inhibition"`
}

// CategoryIs reports whether a categorical ADME value equals any of the
// wanted labels, ignoring case and surrounding space.
func CategoryIs(value string, wanted ...string) bool {
	v := normalize(value)
	if v == "" {
		return false
	}
	for _, w := range wanted {
		if v == normalize(w) {
			return true
		}
	}
	return false
}
