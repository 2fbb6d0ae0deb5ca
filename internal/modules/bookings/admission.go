package bookings

import "context"

// DefaultMaxBookingsPerUser caps how many bookings a single account may
// accumulate across all statuses.
const DefaultMaxBookingsPerUser = 16

// Admission enforces the per-user booking ceiling. It is consulted before a
// payment order is opened, so a user at the cap never reaches the gateway.
type Admission struct {
	store   Store
	ceiling int64
}

func NewAdmission(store Store, ceiling int) *Admission {
	if ceiling < 1 {
		ceiling = DefaultMaxBookingsPerUser
	}
	return &Admission{store: store, ceiling: int64(ceiling)}
}

// CanAdmit counts the user's bookings regardless of status. The ceiling is
// inclusive on the deny side: count >= ceiling denies.
func (a *Admission) CanAdmit(ctx context.Context, userID string) (bool, error) {
	n, err := a.store.CountByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return n < a.ceiling, nil
}
