package events

// QuestionSubmitRequestedPayloadV1 asks the Question Bank to store a question for review.
type QuestionSubmitRequestedPayloadV1 struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex uint8    `json:"correct_index"`
	Category     string   `json:"category"`
	Difficulty   uint8    `json:"difficulty"`
}

// VoteRequestedPayloadV1 is a curator vote.
type VoteRequestedPayloadV1 struct {
	QuestionID uint64 `json:"question_id"`
	Approve    bool   `json:"approve"`
}

// QuestionSubmittedPayloadV1 announces a new pending question.
type QuestionSubmittedPayloadV1 struct {
	QuestionID uint64 `json:"question_id"`
	Submitter  string `json:"submitter"`
	Category   string `json:"category"`
	Difficulty uint8  `json:"difficulty"`
}

// QuestionFinalizedPayloadV1 announces the vote that finalized a question.
type QuestionFinalizedPayloadV1 struct {
	QuestionID uint64 `json:"question_id"`
	Status     string `json:"status"`
	Approvals  uint32 `json:"approvals"`
	Rejections uint32 `json:"rejections"`
}
