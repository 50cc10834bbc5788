package conversation

// MergeEntities folds fields extracted from the current turn into the
// remembered set. New values win over old values, empty fields never
// overwrite, and a new full phone number clears the confirmed flag because
// the caller has corrected what we thought we knew.
func MergeEntities(mem *Memory, extracted Entities) {
	if extracted.Name != "" {
		mem.Remembered.Name = extracted.Name
	}
	if extracted.Email != "" {
		mem.Remembered.Email = extracted.Email
	}
	if extracted.Phone != "" {
		if extracted.Phone != mem.Remembered.Phone {
			mem.PhoneConfirmed = false
		}
		mem.Remembered.Phone = extracted.Phone
	}
	if extracted.RequestedDate != "" {
		mem.Remembered.RequestedDate = extracted.RequestedDate
	}
	if extracted.RequestedTime != "" {
		mem.Remembered.RequestedTime = extracted.RequestedTime
	}
	if extracted.PartySize > 0 {
		mem.Remembered.PartySize = extracted.PartySize
	}
}

// HasBookingFields reports whether the remembered set is complete enough to
// commit: name, a full phone number, a date, and a time.
func HasBookingFields(e Entities) bool {
	return e.Name != "" && e.Phone != "" && e.RequestedDate != "" && e.RequestedTime != ""
}

// MissingBookingFields lists the fields still needed before a commit, in the
// order the agent should ask for them.
func MissingBookingFields(e Entities) []string {
	var missing []string
	if e.RequestedDate == "" {
		missing = append(missing, "date")
	}
	if e.RequestedTime == "" {
		missing = append(missing, "time")
	}
	if e.Name == "" {
		missing = append(missing, "name")
	}
	if e.Phone == "" {
		missing = append(missing, "phone number")
	}
	return missing
}
