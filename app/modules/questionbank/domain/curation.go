package questionbankdomain

// Reputation deltas applied when a question is finalized.
const (
	BootstrapReputation int64 = 100
	ApprovalReward      int64 = 50
	RejectionPenalty    int64 = -10
	MatchingVoteReward  int64 = 10
	MismatchVotePenalty int64 = -5
)

// Quorum is the number of matching votes that finalizes a question: a strict majority of
// the curators eligible to vote on it.
func Quorum(eligible int) uint32 {
	return uint32(eligible/2 + 1)
}

// Outcome returns the status implied by the tallies. eligible counts the curators allowed to
// vote on the question and outstanding those of them who have not voted yet. Approval is
// checked first, so a tally can only finalize in one direction per vote. Once nobody is left
// to vote, the side with more votes wins and a tie rejects.
func Outcome(approvals, rejections uint32, eligible, outstanding int) Status {
	q := Quorum(eligible)
	switch {
	case approvals >= q:
		return StatusApproved
	case rejections >= q:
		return StatusRejected
	case outstanding > 0 || approvals+rejections == 0:
		return StatusPending
	case approvals > rejections:
		return StatusApproved
	default:
		return StatusRejected
	}
}

// Electorate returns how many curators may vote on a question from submitter and how many of
// them have not voted yet.
func Electorate(curators []string, submitter string, voted map[string]bool) (eligible, outstanding int) {
	for _, c := range curators {
		if c == submitter {
			continue
		}
		eligible++
		if !voted[c] {
			outstanding++
		}
	}
	return eligible, outstanding
}

// SubmitterDelta is the submitter's reputation change for a finalized question.
func SubmitterDelta(outcome Status) int64 {
	if outcome == StatusApproved {
		return ApprovalReward
	}
	return RejectionPenalty
}

// VoterDelta is a curator's reputation change given their vote and the outcome.
func VoterDelta(approve bool, outcome Status) (delta int64, matched bool) {
	matched = approve == (outcome == StatusApproved)
	if matched {
		return MatchingVoteReward, true
	}
	return MismatchVotePenalty, false
}

// ApplyDelta adds delta to score, flooring at zero.
func ApplyDelta(score, delta int64) int64 {
	if delta < 0 && score < -delta {
		return 0
	}
	return score + delta
}
