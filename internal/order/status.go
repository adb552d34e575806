package order

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipping   Status = "SHIPPING"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// rank orders the forward path; cancelled sits outside it.
var rank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipping:   2,
	StatusDelivered:  3,
}

func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok || s == StatusCancelled
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CheckTransition validates moving o to next. Forward skips are allowed,
// backward moves and edits of terminal orders are not.
func CheckTransition(o *Order, next Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if o.Status.Terminal() {
		return ErrInvalidTransition
	}
	if next == StatusCancelled {
		return nil
	}
	if rank[next] <= rank[o.Status] {
		return ErrInvalidTransition
	}
	if next == StatusDelivered && !o.IsPaid && o.PaymentMethod != PaymentCOD {
		return ErrDeliveredUnpaid
	}
	return nil
}
