package authrouter

import (
	authhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/handlers"
	"github.com/nats-io/nats.go"
)

const (
	// ChallengeRequestSubject is the NATS request-reply subject for challenge requests.
	ChallengeRequestSubject = "auth.challenge.requested.v1"

	// TokenRequestSubject is the NATS request-reply subject for token requests.
	TokenRequestSubject = "auth.token.requested.v1"

	// QueueGroup is the default queue group name for load balancing.
	QueueGroup = "trivia-ledger-auth"
)

// Router manages NATS subscriptions for the auth module.
type Router struct {
	handlers          authhandlers.Handlers
	nc                *nats.Conn
	challengeSub      *nats.Subscription
	tokenSubscription *nats.Subscription
}

// NewRouter creates a new auth router.
func NewRouter(handlers authhandlers.Handlers, nc *nats.Conn) *Router {
	return &Router{
		handlers: handlers,
		nc:       nc,
	}
}

// Start subscribes to the auth request subjects. Challenges live in process memory, so a
// token request must reach the instance that issued the nonce; queueGroup should be unique
// per instance when more than one runs.
func (r *Router) Start(queueGroup string) error {
	if queueGroup == "" {
		queueGroup = QueueGroup
	}

	var err error
	r.challengeSub, err = r.nc.QueueSubscribe(ChallengeRequestSubject, queueGroup, r.handlers.HandleNATSChallenge)
	if err != nil {
		return err
	}

	r.tokenSubscription, err = r.nc.QueueSubscribe(TokenRequestSubject, queueGroup, r.handlers.HandleNATSToken)
	if err != nil {
		_ = r.challengeSub.Unsubscribe()
		return err
	}

	return nil
}

// Stop unsubscribes from all NATS subjects.
func (r *Router) Stop() error {
	var firstErr error

	if r.challengeSub != nil {
		if err := r.challengeSub.Unsubscribe(); err != nil {
			firstErr = err
		}
	}

	if r.tokenSubscription != nil {
		if err := r.tokenSubscription.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
