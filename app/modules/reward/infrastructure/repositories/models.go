package rewarddb

import (
	"time"

	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// State is the singleton Reward Distributor account. Treasury receives platform fees.
type State struct {
	bun.BaseModel `bun:"table:reward_distributor_state,alias:rds"`
	Address       uuid.UUID `bun:"address,pk,type:uuid" json:"address"`
	Authority     string    `bun:"authority,notnull" json:"authority"`
	Treasury      string    `bun:"treasury,notnull" json:"treasury"`
	PoolCount     uint64    `bun:"pool_count,notnull" json:"pool_count"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Pool is a reward pool and its escrow bookkeeping. DistributedBalance counts the platform fee
// and every paid claim; ReturnedBalance is what went back to the authority on close. The vault
// holds Funded - DistributedBalance - ReturnedBalance.
type Pool struct {
	bun.BaseModel      `bun:"table:reward_pools,alias:rp"`
	ID                 uint64     `bun:"id,pk" json:"id"`
	Address            uuid.UUID  `bun:"address,type:uuid,notnull,unique" json:"address"`
	Authority          string     `bun:"authority,notnull" json:"authority"`
	Name               string     `bun:"name,notnull" json:"name"`
	Target             uint64     `bun:"target,notnull" json:"target"`
	Kind               string     `bun:"kind,notnull" json:"kind"`
	TokenID            *string    `bun:"token_id" json:"token_id,omitempty"`
	Asset              string     `bun:"asset,notnull" json:"asset"`
	Vault              string     `bun:"vault,notnull" json:"vault"`
	Criteria           string     `bun:"criteria,notnull" json:"criteria"`
	PlatformFeeBps     uint16     `bun:"platform_fee_bps,notnull" json:"platform_fee_bps"`
	StartTime          time.Time  `bun:"start_time,notnull" json:"start_time"`
	EndTime            time.Time  `bun:"end_time,notnull" json:"end_time"`
	Funded             uint64     `bun:"funded,notnull" json:"funded"`
	DistributedBalance uint64     `bun:"distributed_balance,notnull" json:"distributed_balance"`
	ReturnedBalance    uint64     `bun:"returned_balance,notnull" json:"returned_balance"`
	PlatformFee        uint64     `bun:"platform_fee,notnull" json:"platform_fee"`
	Entitled           uint64     `bun:"entitled,notnull" json:"entitled"`
	Active             bool       `bun:"active,notnull" json:"active"`
	DistributedAt      *time.Time `bun:"distributed_at" json:"distributed_at,omitempty"`
	ClosedAt           *time.Time `bun:"closed_at" json:"closed_at,omitempty"`
	CreatedAt          time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// VaultBalance is what the pool vault still holds.
func (p *Pool) VaultBalance() uint64 {
	return p.Funded - p.DistributedBalance - p.ReturnedBalance
}

// Distribution is the custom tier set of a tiered pool.
type Distribution struct {
	bun.BaseModel `bun:"table:reward_distributions,alias:rd"`
	PoolID        uint64              `bun:"pool_id,pk" json:"pool_id"`
	Address       uuid.UUID           `bun:"address,type:uuid,notnull,unique" json:"address"`
	Tiers         []rewarddomain.Tier `bun:"tiers,type:jsonb,notnull" json:"tiers"`
	UpdatedAt     time.Time           `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Claim is one participant's entitlement. Its address is derived from pool and claimant, so
// the primary key rejects a second record.
type Claim struct {
	bun.BaseModel `bun:"table:reward_claims,alias:rc"`
	Address       uuid.UUID  `bun:"address,pk,type:uuid" json:"address"`
	PoolID        uint64     `bun:"pool_id,notnull" json:"pool_id"`
	Claimant      string     `bun:"claimant,notnull" json:"claimant"`
	Rank          uint32     `bun:"rank,notnull" json:"rank"`
	Amount        uint64     `bun:"amount,notnull" json:"amount"`
	Claimed       bool       `bun:"claimed,notnull" json:"claimed"`
	ClaimedAt     *time.Time `bun:"claimed_at" json:"claimed_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
