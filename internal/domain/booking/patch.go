package booking

// Patch is a partial update for the store's patch operation. Nil fields are
// left untouched. ClearSlot releases the held slot (stores NULL) and wins
// over Slot.
type Patch struct {
	Slot           *int
	ClearSlot      bool
	Status         *Status
	Message        *string
	EndMonth       *string
	DurationMonths *int
}

// PatchFromBooking captures a booking's mutable allocation fields, as left
// by the entity mutators, into a store patch.
func PatchFromBooking(b *Booking) Patch {
	status := b.Status()
	message := b.Message()
	endMonth := b.EndMonth()
	duration := b.DurationMonths()

	p := Patch{
		Status:         &status,
		Message:        &message,
		EndMonth:       &endMonth,
		DurationMonths: &duration,
	}
	if slot := b.Slot(); slot != nil {
		p.Slot = slot
	} else {
		p.ClearSlot = true
	}
	return p
}
