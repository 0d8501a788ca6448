package request

import (
	"time"

	"github.com/fekuna/rims-inventory-service/internal/model"
)

// Urgency classes shown on the supply board.
const (
	UrgencyNew     = "new"
	UrgencyWaiting = "waiting"
	UrgencyDelayed = "delayed"
)

const newWindow = 5 * time.Minute

// DeriveLineItemStatus reports fulfilled once the cumulative supply covers the request.
func DeriveLineItemStatus(supplied, requested int) model.LineItemStatus {
	if requested > 0 && supplied >= requested {
		return model.LineItemFulfilled
	}
	return model.LineItemPending
}

// DeriveRequestStatus folds the statuses of every line item of a request.
func DeriveRequestStatus(items []model.LineItemStatus) model.RequestStatus {
	fulfilled := 0
	for _, s := range items {
		if s == model.LineItemFulfilled {
			fulfilled++
		}
	}
	switch {
	case len(items) > 0 && fulfilled == len(items):
		return model.RequestFulfilled
	case fulfilled > 0:
		return model.RequestPartial
	default:
		return model.RequestPending
	}
}

// Advance moves current toward derived but never backwards.
func Advance(current, derived model.RequestStatus) model.RequestStatus {
	if derived.Rank() > current.Rank() {
		return derived
	}
	return current
}

func ClassifyUrgency(requestedAt, now time.Time, delayedAfter time.Duration) string {
	age := now.Sub(requestedAt)
	switch {
	case age < newWindow:
		return UrgencyNew
	case age > delayedAfter:
		return UrgencyDelayed
	default:
		return UrgencyWaiting
	}
}
