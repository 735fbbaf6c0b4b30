package model

// Subscriber is one opted-in phone number. The phone number is the primary
// key; subscribed_at is kept as an RFC 3339 string, matching the persisted
// layout ("record exists" is the whole subscription state).
type Subscriber struct {
	PhoneNumber  string `db:"phone_number" json:"phone_number"`
	SubscribedAt string `db:"subscribed_at" json:"subscribed_at"`
}

// InboundEvent is one inbound SMS webhook delivery. Twilio posts these
// form-encoded with capitalized field names.
type InboundEvent struct {
	From string `json:"from" form:"From"`
	Body string `json:"body" form:"Body"`
}

// BroadcastRequest is the operator-supplied broadcast payload.
type BroadcastRequest struct {
	Message string `json:"message"`
}

// BroadcastResult is the tally of one broadcast fan-out. Sends that already
// went out are not rolled back on failure, so Succeeded can be non-zero even
// when Failed > 0.
type BroadcastResult struct {
	ID        string `json:"id"`
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// OK reports the legacy all-or-nothing broadcast outcome.
func (r BroadcastResult) OK() bool {
	return r.Failed == 0
}
