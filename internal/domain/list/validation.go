package list

// ValidateTransition validates a requested status change.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	switch from {
	case StatusActive:
		if to == StatusCompleted || to == StatusArchived {
			return nil
		}
	case StatusCompleted:
		if to == StatusActive || to == StatusArchived {
			return nil
		}
	}
	return ErrInvalidTransition
}

func validStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}
