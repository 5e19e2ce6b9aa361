package events

// RankingV1 places a participant at a rank for distribution.
type RankingV1 struct {
	Participant string `json:"participant"`
	Rank        uint32 `json:"rank"`
}

// RewardDistributeRequestedPayloadV1 asks the Reward Distributor to compute entitlements.
type RewardDistributeRequestedPayloadV1 struct {
	PoolID   uint64      `json:"pool_id"`
	Rankings []RankingV1 `json:"rankings"`
}

// EntitlementV1 is one participant's claimable amount.
type EntitlementV1 struct {
	Participant string `json:"participant"`
	Rank        uint32 `json:"rank"`
	Amount      uint64 `json:"amount"`
}

// RewardDistributedPayloadV1 announces the entitlements created by a distribution.
type RewardDistributedPayloadV1 struct {
	PoolID       uint64          `json:"pool_id"`
	PlatformFee  uint64          `json:"platform_fee"`
	Entitlements []EntitlementV1 `json:"entitlements"`
}

// RewardClaimRequestedPayloadV1 claims the signer's entitlement.
type RewardClaimRequestedPayloadV1 struct {
	PoolID uint64 `json:"pool_id"`
}

// RewardClaimedPayloadV1 announces a paid claim.
type RewardClaimedPayloadV1 struct {
	PoolID   uint64 `json:"pool_id"`
	Claimant string `json:"claimant"`
	Amount   uint64 `json:"amount"`
}
