// Package decision implements the specification chain used to accept or
// reject release candidates and local files.
package decision

// RejectionType distinguishes rejections that can never pass from those
// caused by transient conditions worth retrying later.
type RejectionType int

const (
	// RejectionPermanent means the item structurally cannot be used.
	RejectionPermanent RejectionType = iota
	// RejectionTemporary means a transient condition blocked the item;
	// a later retry may pass.
	RejectionTemporary
)

func (t RejectionType) String() string {
	if t == RejectionTemporary {
		return "temporary"
	}
	return "permanent"
}

// Rejection is one reason an item was turned down.
type Rejection struct {
	Reason string
	Type   RejectionType
}

// NewRejection creates a permanent rejection.
func NewRejection(reason string) Rejection {
	return Rejection{Reason: reason, Type: RejectionPermanent}
}

// NewTemporaryRejection creates a rejection that should not permanently
// blacklist the item.
func NewTemporaryRejection(reason string) Rejection {
	return Rejection{Reason: reason, Type: RejectionTemporary}
}

// Decision is the verdict of a single specification for a single item.
// It is a pure result; it never mutates its input.
type Decision struct {
	rejections []Rejection
}

// Accept returns an accepting decision.
func Accept() Decision {
	return Decision{}
}

// Reject returns a decision carrying the given rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{rejections: rejections}
}

// Accepted reports whether the decision carries no rejections.
func (d Decision) Accepted() bool {
	return len(d.rejections) == 0
}

// Rejections returns the rejection reasons, nil when accepted.
func (d Decision) Rejections() []Rejection {
	return d.rejections
}
