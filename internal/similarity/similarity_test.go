package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"PTA Leite":            "pta_leite",
		"  PTA  MILK (lbs)  ":  "pta_milk_lbs",
		"Proteína %":           "proteina",
		"Data de Nascimento":   "data_de_nascimento",
		"NAAB-Code":            "naab_code",
		"__weird__header__":    "weird_header",
		"":                     "",
		"Somatic Cell Score !": "somatic_cell_score",
	}

	for input, want := range cases {
		assert.Equal(t, want, NormalizeKey(input), "input %q", input)
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"PTA Leite", "Proteína %", "naab code", "", "Ñandú / Größe"}
	for _, s := range inputs {
		once := NormalizeKey(s)
		assert.Equal(t, once, NormalizeKey(once))
	}
}

func TestJaroWinklerIdentity(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("ptam", "ptam"))
	assert.Equal(t, 1.0, JaroWinkler("", ""))
}

func TestJaroWinklerEmptyAndDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, JaroWinkler("ptam", ""))
	assert.Equal(t, 0.0, JaroWinkler("", "ptam"))
	assert.Equal(t, 0.0, JaroWinkler("abc", "xyz"))
}

func TestJaroWinklerSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"pta_milk", "pta_leite"},
		{"somatic_cell_score", "scs"},
		{"registration", "registro"},
		{"dixie", "dicksonx"},
	}
	for _, p := range pairs {
		assert.InDelta(t, JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0]), 1e-12)
	}
}

func TestJaroWinklerKnownValues(t *testing.T) {
	// Classic reference pairs for the standard parameters (p=0.1, prefix<=4).
	assert.InDelta(t, 0.9611, JaroWinkler("martha", "marhta"), 1e-4)
	assert.InDelta(t, 0.8133, JaroWinkler("dixon", "dicksonx"), 1e-4)
	assert.InDelta(t, 0.8400, JaroWinkler("dwayne", "duane"), 1e-4)
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	// Shared prefix must raise the score above plain Jaro.
	withPrefix := JaroWinkler("pta_milk", "pta_mlik")
	assert.Greater(t, withPrefix, jaroSimilarity("pta_milk", "pta_mlik"))
}
