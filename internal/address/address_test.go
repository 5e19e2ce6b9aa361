package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	a := Derive(QuestionBank, "vote", "UALICE", ID(7))
	b := Derive(QuestionBank, "vote", "UALICE", ID(7))
	assert.Equal(t, a, b, "derivation must be deterministic")

	assert.NotEqual(t, a, Derive(QuestionBank, "vote", "UBOB", ID(7)))
	assert.NotEqual(t, a, Derive(QuestionBank, "vote", "UALICE", ID(8)))
	assert.NotEqual(t, a, Derive(Tournament, "vote", "UALICE", ID(7)), "namespaces must not collide")

	// "ab"+"c" and "a"+"bc" must not collide.
	assert.NotEqual(t, Derive(Reward, "claim", "ab", "c"), Derive(Reward, "claim", "a", "bc"))
}

func TestVault(t *testing.T) {
	v := Vault(Tournament, "tournament", 3)
	assert.Equal(t, v, Vault(Tournament, "tournament", 3))
	assert.NotEqual(t, v, Vault(Tournament, "tournament", 4))
	assert.NotEqual(t, v, Vault(Reward, "tournament", 3))
	assert.Contains(t, v, "vault:")
}
