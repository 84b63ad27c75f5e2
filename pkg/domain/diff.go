package domain

// Diff lists the FilledData fields that differ between two snapshots,
// in fill order. Values are not included so the result is safe to log.
func Diff(oldData, newData FilledData) []string {
	var changed []string
	if oldData.FlowType != newData.FlowType {
		changed = append(changed, "flow_type")
	}
	if !eqPtr(oldData.Email, newData.Email) {
		changed = append(changed, "email")
	}
	if !eqPtr(oldData.Password, newData.Password) {
		changed = append(changed, "password")
	}
	if oldData.AgeVerified != newData.AgeVerified {
		changed = append(changed, "age_verified")
	}
	if oldData.TermsConfirmed != newData.TermsConfirmed {
		changed = append(changed, "terms_confirmed")
	}
	if !eqPtr(oldData.UserID, newData.UserID) {
		changed = append(changed, "user_id")
	}
	return changed
}

func eqPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
