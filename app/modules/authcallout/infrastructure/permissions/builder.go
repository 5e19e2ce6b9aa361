// Package permissions maps a verified signer to the NATS subjects it may use.
package permissions

import (
	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	authrouter "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/router"
)

// Permissions defines pub/sub permissions for a connection.
type Permissions struct {
	Publish   PermissionSet `json:"pub"`
	Subscribe PermissionSet `json:"sub"`
}

// PermissionSet contains allow and deny patterns.
type PermissionSet struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// Builder constructs permission sets.
type Builder struct{}

// NewBuilder creates a new permission builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// instructionSubjects are the requests a signer may publish. Each message must still carry
// a valid signature for the signer named in its metadata.
var instructionSubjects = []string{
	events.QuestionSubmitRequestedV1,
	events.VoteRequestedV1,
	events.ScoreSubmitRequestedV1,
	events.TournamentCompleteRequestedV1,
	events.RewardDistributeRequestedV1,
	events.RewardClaimRequestedV1,
	authrouter.ChallengeRequestSubject,
	authrouter.TokenRequestSubject,
}

// Viewer may only follow program events.
func (b *Builder) Viewer() *Permissions {
	return &Permissions{
		Subscribe: PermissionSet{Allow: append(events.Subjects(), "_INBOX.>")},
		Publish:   PermissionSet{Deny: []string{">"}},
	}
}

// Signer may follow program events and publish instructions. Direct writes to the
// outcome subjects are denied so only the programs announce results.
func (b *Builder) Signer() *Permissions {
	return &Permissions{
		Subscribe: PermissionSet{Allow: append(events.Subjects(), "_INBOX.>")},
		Publish: PermissionSet{
			Allow: append([]string(nil), instructionSubjects...),
			Deny: []string{
				events.QuestionSubmittedV1,
				events.QuestionFinalizedV1,
				events.TournamentCompletedV1,
				events.RewardDistributedV1,
				events.RewardClaimedV1,
			},
		},
	}
}
