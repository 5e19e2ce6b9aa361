// Package address derives deterministic account addresses from a program namespace and seed
// values. The same inputs always produce the same address, so uniqueness of an entity keyed by
// (program, entity, keys...) is enforced by the primary key on its address.
package address

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Program namespaces. Changing any of these values moves every derived address.
var (
	QuestionBank = uuid.MustParse("5a0b8c1e-9f3d-4e2a-8b6c-1d2e3f405161")
	Tournament   = uuid.MustParse("6b1c9d2f-a04e-4f3b-9c7d-2e3f40516272")
	Reward       = uuid.MustParse("7c2dae30-b15f-4a4c-8d8e-3f4051627383")
	Ledger       = uuid.MustParse("8d3ebf41-c260-4b5d-9e9f-405162738494")
)

// Derive computes the address for an entity under a program namespace.
// Seeds are joined with a separator that cannot appear in a decimal id or a signer address.
func Derive(program uuid.UUID, entity string, seeds ...string) uuid.UUID {
	var b strings.Builder
	b.WriteString(entity)
	for _, s := range seeds {
		b.WriteByte(0x1f)
		b.WriteString(s)
	}
	return uuid.NewSHA1(program, []byte(b.String()))
}

// ID renders a numeric entity id as a seed.
func ID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Vault is the holder address of a program-owned escrow account.
func Vault(program uuid.UUID, entity string, id uint64) string {
	return "vault:" + Derive(program, entity+".vault", ID(id)).String()
}
