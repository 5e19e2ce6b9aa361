// Package events defines the topics and payloads the programs exchange over the event bus.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Question Bank topics.
const (
	QuestionSubmitRequestedV1 = "questionbank.question.submit.requested.v1"
	VoteRequestedV1           = "questionbank.vote.requested.v1"
	QuestionSubmittedV1       = "questionbank.question.submitted.v1"
	QuestionFinalizedV1       = "questionbank.question.finalized.v1"
	QuestionBankFailedV1      = "questionbank.failed.v1"
)

// Tournament topics.
const (
	ScoreSubmitRequestedV1        = "tournament.score.submit.requested.v1"
	TournamentCompleteRequestedV1 = "tournament.complete.requested.v1"
	TournamentCompletedV1         = "tournament.completed.v1"
	TournamentFailedV1            = "tournament.failed.v1"
)

// Reward topics.
const (
	RewardDistributeRequestedV1 = "reward.distribute.requested.v1"
	RewardDistributedV1         = "reward.distributed.v1"
	RewardClaimRequestedV1      = "reward.claim.requested.v1"
	RewardClaimedV1             = "reward.claimed.v1"
	RewardFailedV1              = "reward.failed.v1"
)

// Subjects lists every subject captured by the durable stream.
func Subjects() []string {
	return []string{"questionbank.>", "tournament.>", "reward.>"}
}

// FailedPayloadV1 reports an instruction rejected with a domain error.
type FailedPayloadV1 struct {
	Operation string `json:"operation"`
	Code      uint32 `json:"code"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// Failed builds the failure result for a domain error. ok is false for infrastructure
// errors, which should be returned to the router instead.
func Failed(topic, operation string, err error) (handlerwrapper.Result, bool) {
	lerr, ok := ledgererr.As(err)
	if !ok {
		return handlerwrapper.Result{}, false
	}
	return handlerwrapper.Result{
		Topic: topic,
		Payload: &FailedPayloadV1{
			Operation: operation,
			Code:      lerr.Code,
			Name:      lerr.Name,
			Kind:      string(lerr.Kind),
			Message:   lerr.Message,
		},
	}, true
}

// Publisher is the subset of the event bus needed to emit events outside a router handler.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// Publish marshals payload and publishes it on topic.
func Publish(pub Publisher, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(handlerwrapper.MetadataTopic, topic)
	return pub.Publish(topic, msg)
}
