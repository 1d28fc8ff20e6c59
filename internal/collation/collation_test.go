package collation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestCompareKindPrecedence(t *testing.T) {
	ordered := []string{
		`null`,
		`false`,
		`true`,
		`1`,
		`"a string"`,
		`[1,2]`,
		`{"k":1}`,
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			assert.Equalf(t, -1, sign(Compare(ordered[i], ordered[j])),
				"expected %s < %s", ordered[i], ordered[j])
			assert.Equalf(t, 1, sign(Compare(ordered[j], ordered[i])),
				"expected %s > %s", ordered[j], ordered[i])
		}
	}
}

func TestCompareNumbers(t *testing.T) {
	assert.Equal(t, -1, sign(Compare("1", "2")))
	assert.Equal(t, 1, sign(Compare("2.5", "2")))
	assert.Equal(t, 0, Compare("3", "3.0"))
}

func TestCompareStrings(t *testing.T) {
	assert.Equal(t, -1, sign(Compare(`"a"`, `"b"`)))
	assert.Equal(t, 0, Compare(`"same"`, `"same"`))
}

func TestCompareArraysElementwise(t *testing.T) {
	assert.Equal(t, -1, sign(Compare(`[1,2]`, `[1,3]`)))
	assert.Equal(t, -1, sign(Compare(`[1]`, `[1,0]`)))
	assert.Equal(t, 0, Compare(`[1,2]`, `[1,2]`))
}

func TestCompareObjectsByKeyThenValue(t *testing.T) {
	// key order in the encoded string must not matter: sorted by key first.
	assert.Equal(t, 0, Compare(`{"a":1,"b":2}`, `{"b":2,"a":1}`))
	assert.Equal(t, -1, sign(Compare(`{"a":1}`, `{"a":2}`)))
	assert.Equal(t, -1, sign(Compare(`{"a":1}`, `{"b":1}`)))
}

func TestCompareReflexiveAntisymmetricTransitive(t *testing.T) {
	values := []string{`null`, `false`, `true`, `0`, `1`, `2`, `"a"`, `"b"`, `[1]`, `[1,2]`, `{"a":1}`, `{"b":1}`}
	for _, v := range values {
		assert.Equal(t, 0, Compare(v, v), "reflexivity failed for %s", v)
	}
	for i := range values {
		for j := range values {
			if i == j {
				continue
			}
			cij := sign(Compare(values[i], values[j]))
			cji := sign(Compare(values[j], values[i]))
			assert.Equalf(t, -cij, cji, "antisymmetry failed for %s vs %s", values[i], values[j])
		}
	}
	// Spot-check transitivity across the ordered chain.
	chain := []string{`null`, `1`, `"z"`, `[1]`, `{"a":1}`}
	for i := 0; i < len(chain)-2; i++ {
		assert.Equal(t, -1, sign(Compare(chain[i], chain[i+1])))
		assert.Equal(t, -1, sign(Compare(chain[i+1], chain[i+2])))
		assert.Equal(t, -1, sign(Compare(chain[i], chain[i+2])))
	}
}

func TestCompareMalformedSortsAsNull(t *testing.T) {
	assert.Equal(t, 0, Compare(`not json`, `also not json`))
	assert.Equal(t, -1, sign(Compare(`not json`, `1`)))
}

func TestNormalizeStripsInsignificantWhitespace(t *testing.T) {
	out, err := Normalize([]byte(`  { "a" :  1 }  `))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Normalize([]byte(`not json`))
	assert.Error(t, err)
}
