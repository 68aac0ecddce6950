package ingest

import "github.com/sells-group/admet-cli/internal/model"

var (
	identifierAliases = []string{"Filename", "identifier", "id", "name", "ligand", "compound", "compound_id", "molecule"}
	structureAliases  = []string{"SMILES", "structure", "structure_descriptor", "canonical_smiles"}
)

// property maps one CompoundRecord field onto the column names used by
// descriptor and prediction tools.
type property struct {
	aliases []string
	set     func(rec *model.CompoundRecord, raw string)
}

var properties = []property{
	{[]string{"Docking Score", "docking_score", "vina_score", "affinity", "binding_affinity"},
		func(r *model.CompoundRecord, v string) { r.DockingScore = model.ParseNumber(v) }},

	{[]string{"MW", "molecular_weight", "MolWt"},
		func(r *model.CompoundRecord, v string) { r.MolecularWeight = model.ParseNumber(v) }},
	{[]string{"TPSA"},
		func(r *model.CompoundRecord, v string) { r.TPSA = model.ParseNumber(v) }},
	{[]string{"HBD", "h_bond_donors", "NumHDonors"},
		func(r *model.CompoundRecord, v string) { r.HBondDonors = model.ParseNumber(v) }},
	{[]string{"HBA", "h_bond_acceptors", "NumHAcceptors"},
		func(r *model.CompoundRecord, v string) { r.HBondAcceptors = model.ParseNumber(v) }},
	{[]string{"RotB", "rotatable_bonds", "NumRotatableBonds"},
		func(r *model.CompoundRecord, v string) { r.RotatableBonds = model.ParseNumber(v) }},
	{[]string{"FractionCSP3", "fraction_sp3", "Fsp3"},
		func(r *model.CompoundRecord, v string) { r.FractionSP3 = model.ParseNumber(v) }},
	{[]string{"WLogP", "logP", "MolLogP"},
		func(r *model.CompoundRecord, v string) { r.LogP = model.ParseNumber(v) }},

	{[]string{"Lipinski", "lipinski_pass"},
		func(r *model.CompoundRecord, v string) { r.Lipinski = model.ParseFlag(v) }},
	{[]string{"PAINS", "pains_alert"},
		func(r *model.CompoundRecord, v string) { r.PAINSAlert = model.ParseFlag(v) }},
	{[]string{"Brenk", "brenk_alert"},
		func(r *model.CompoundRecord, v string) { r.BrenkAlert = model.ParseFlag(v) }},
	{[]string{"SA Score", "synthetic_accessibility", "SA"},
		func(r *model.CompoundRecord, v string) { r.SyntheticAccessibility = model.ParseNumber(v) }},
	{[]string{"QED"},
		func(r *model.CompoundRecord, v string) { r.QED = model.ParseNumber(v) }},

	{[]string{"hERG", "herg_risk"},
		func(r *model.CompoundRecord, v string) { r.HERG = model.ParseRiskLevel(v) }},
	{[]string{"DILI", "dili_risk"},
		func(r *model.CompoundRecord, v string) { r.DILI = model.ParseRiskLevel(v) }},
	{[]string{"AMES", "ames_mutagenicity"},
		func(r *model.CompoundRecord, v string) { r.Ames = model.ParseFlag(v) }},
	{[]string{"Carcinogens_Lagunin", "Carcinogenicity", "carcinogenic"},
		func(r *model.CompoundRecord, v string) { r.Carcinogenicity = model.ParseFlag(v) }},

	{[]string{"GI Absorption", "gi_absorption"},
		func(r *model.CompoundRecord, v string) { r.GIAbsorption = v }},
	{[]string{"Caco2_Wang", "caco2_permeability", "Caco2"},
		func(r *model.CompoundRecord, v string) { r.Caco2Permeability = v }},
	{[]string{"BBB_Martins", "bbb_permeability", "BBB"},
		func(r *model.CompoundRecord, v string) { r.BBBPermeability = v }},
	{[]string{"PPBR_AZ", "PPB (AZ)", "plasma_protein_binding", "PPB"},
		func(r *model.CompoundRecord, v string) { r.PlasmaProteinBinding = model.ParseNumber(v) }},
	{[]string{"CYP3A4_Veith", "CYP3A4 Inhibition", "CYP3A4"},
		func(r *model.CompoundRecord, v string) { r.CYP3A4Inhibition = model.ParseFlag(v) }},
	{[]string{"CYP2D6_Veith", "CYP2D6 Inhibition", "CYP2D6"},
		func(r *model.CompoundRecord, v string) { r.CYP2D6Inhibition = model.ParseFlag(v) }},
}

// boundColumn is a property resolved against one table's header.
type boundColumn struct {
	idx int
	set func(rec *model.CompoundRecord, raw string)
}

// bindProperties resolves every known property present in t.
func bindProperties(t *Table) []boundColumn {
	var cols []boundColumn
	for _, p := range properties {
		if idx, ok := t.Index(p.aliases...); ok {
			cols = append(cols, boundColumn{idx: idx, set: p.set})
		}
	}
	return cols
}

// apply copies every non-empty bound cell of row onto rec.
func apply(rec *model.CompoundRecord, cols []boundColumn, row []string) {
	for _, c := range cols {
		if v := cell(row, c.idx); v != "" {
			c.set(rec, v)
		}
	}
}
