package data

import "visitpermits/lib/models"

// transitionMap lists, per target status, the statuses it may be reached from.
// Approved and refused are terminal: nothing leaves them, not even themselves.
var transitionMap = map[string][]string{
	models.PermitStatusPending:  {models.PermitStatusPending},
	models.PermitStatusApproved: {models.PermitStatusPending},
	models.PermitStatusRefused:  {models.PermitStatusPending},
}

// ValidTransition reports whether a permit request may move from one status to
// another
func ValidTransition(fromStatus, toStatus string) bool {
	allowed, ok := transitionMap[toStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
