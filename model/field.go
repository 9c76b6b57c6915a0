/*
Copyright 2024 Herdsync Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

// FieldKind declares how a canonical field's raw cell values are coerced.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumeric
	FieldDate
)

// FieldUnit declares the unit family of a numeric field. Mass-based PTAs can
// arrive in kilograms or pounds and are stored in pounds; percent fields pass
// through unconverted.
type FieldUnit int

const (
	UnitRaw FieldUnit = iota
	UnitMass
	UnitPercent
	UnitCurrency
)

// CanonicalField describes one genetic trait or identity attribute of the
// target schema, independent of any spreadsheet's column naming.
type CanonicalField struct {
	Key     string    // stable identifier, unique within a registry
	Label   string    // human-readable label shown during mapping review
	Aliases []string  // known synonyms, compared after normalization
	Kind    FieldKind
	Unit    FieldUnit
}

// Registry holds the canonical fields for one import target, in declaration
// order. It is immutable after construction and passed explicitly into the
// mapper.
type Registry struct {
	fields []CanonicalField
	byKey  map[string]int
}

// NewRegistry builds a registry, keeping the first field for a duplicated key.
func NewRegistry(fields []CanonicalField) *Registry {
	r := &Registry{byKey: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, exists := r.byKey[f.Key]; exists {
			continue
		}
		r.byKey[f.Key] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Fields returns the registry's fields in declaration order.
func (r *Registry) Fields() []CanonicalField {
	return r.fields
}

// Lookup returns the field for a canonical key.
func (r *Registry) Lookup(key string) (CanonicalField, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return CanonicalField{}, false
	}
	return r.fields[i], true
}

// BullFields is the canonical schema for sire imports. Keys match the bulls
// table columns.
func BullFields() *Registry {
	return NewRegistry([]CanonicalField{
		{Key: "naab_code", Label: "NAAB Code", Kind: FieldText, Aliases: []string{"naab", "codigo naab", "code", "bull code"}},
		{Key: "name", Label: "Name", Kind: FieldText, Aliases: []string{"nome", "bull name", "short name", "nome do touro"}},
		{Key: "registration", Label: "Registration", Kind: FieldText, Aliases: []string{"registro", "reg", "registration number", "id number"}},
		{Key: "birth_date", Label: "Birth Date", Kind: FieldDate, Aliases: []string{"data de nascimento", "nascimento", "dob", "born"}},
		{Key: "ptam", Label: "PTA Milk", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta milk", "pta leite", "milk", "leite", "ptam"}},
		{Key: "ptaf", Label: "PTA Fat", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta fat", "pta gordura", "fat", "gordura", "ptaf"}},
		{Key: "ptap", Label: "PTA Protein", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta protein", "pta proteina", "protein", "proteina", "ptap"}},
		// Percent aliases must stay disjoint from the mass aliases after
		// normalization ("pta fat %" and "pta fat" collapse to the same key).
		{Key: "fat_pct", Label: "Fat Percent", Kind: FieldNumeric, Unit: UnitPercent, Aliases: []string{"fat percent", "percent fat", "fat pct", "teor de gordura"}},
		{Key: "protein_pct", Label: "Protein Percent", Kind: FieldNumeric, Unit: UnitPercent, Aliases: []string{"protein percent", "percent protein", "protein pct", "teor de proteina"}},
		{Key: "scs", Label: "Somatic Cell Score", Kind: FieldNumeric, Aliases: []string{"somatic cell score", "ccs", "cels somaticas"}},
		{Key: "pl", Label: "Productive Life", Kind: FieldNumeric, Aliases: []string{"productive life", "vida produtiva"}},
		{Key: "dpr", Label: "Daughter Pregnancy Rate", Kind: FieldNumeric, Aliases: []string{"daughter pregnancy rate", "taxa de prenhez"}},
		{Key: "tpi", Label: "TPI", Kind: FieldNumeric, Aliases: []string{"tpi", "gtpi", "total performance index"}},
		{Key: "nm", Label: "Net Merit $", Kind: FieldNumeric, Unit: UnitCurrency, Aliases: []string{"net merit", "nm$", "merito liquido"}},
		{Key: "beta_casein", Label: "Beta Casein", Kind: FieldText, Aliases: []string{"beta caseina", "a2a2", "beta-casein"}},
		{Key: "kappa_casein", Label: "Kappa Casein", Kind: FieldText, Aliases: []string{"kappa caseina", "kappa-casein"}},
	})
}

// FemaleFields is the canonical schema for cow/heifer imports. Keys match the
// females table columns.
func FemaleFields() *Registry {
	return NewRegistry([]CanonicalField{
		{Key: "identifier", Label: "Identifier", Kind: FieldText, Aliases: []string{"id", "ear tag", "brinco", "numero", "animal id", "identificacao"}},
		{Key: "name", Label: "Name", Kind: FieldText, Aliases: []string{"nome", "animal name", "nome do animal"}},
		{Key: "registration", Label: "Registration", Kind: FieldText, Aliases: []string{"registro", "reg", "registration number"}},
		{Key: "birth_date", Label: "Birth Date", Kind: FieldDate, Aliases: []string{"data de nascimento", "nascimento", "dob", "born"}},
		{Key: "sire_naab", Label: "Sire NAAB", Kind: FieldText, Aliases: []string{"sire", "pai", "naab do pai", "sire code"}},
		{Key: "mgs_naab", Label: "MGS NAAB", Kind: FieldText, Aliases: []string{"mgs", "avo materno", "maternal grandsire"}},
		{Key: "ptam", Label: "PTA Milk", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta milk", "pta leite", "milk", "leite", "ptam"}},
		{Key: "ptaf", Label: "PTA Fat", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta fat", "pta gordura", "fat", "gordura", "ptaf"}},
		{Key: "ptap", Label: "PTA Protein", Kind: FieldNumeric, Unit: UnitMass, Aliases: []string{"pta protein", "pta proteina", "protein", "proteina", "ptap"}},
		{Key: "scs", Label: "Somatic Cell Score", Kind: FieldNumeric, Aliases: []string{"somatic cell score", "ccs"}},
		{Key: "dpr", Label: "Daughter Pregnancy Rate", Kind: FieldNumeric, Aliases: []string{"daughter pregnancy rate", "taxa de prenhez"}},
		{Key: "tpi", Label: "TPI", Kind: FieldNumeric, Aliases: []string{"tpi", "gtpi"}},
		{Key: "nm", Label: "Net Merit $", Kind: FieldNumeric, Unit: UnitCurrency, Aliases: []string{"net merit", "nm$", "merito liquido"}},
		{Key: "beta_casein", Label: "Beta Casein", Kind: FieldText, Aliases: []string{"beta caseina", "a2a2"}},
	})
}

// RegistryFor returns the canonical registry for an import entity, or nil for
// an unknown entity name.
func RegistryFor(entity string) *Registry {
	switch entity {
	case "bulls":
		return BullFields()
	case "females":
		return FemaleFields()
	}
	return nil
}
