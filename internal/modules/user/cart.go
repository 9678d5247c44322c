package user

// ReconcileCart adjusts a cart after an order consumed some of its staged
// items. For each consumed medicine: a cart line with a larger quantity is
// decremented, an exactly matching line is removed, and an absent medicine is
// a no-op. The input slice is not modified.
func ReconcileCart(cart []CartItem, consumed map[string]int) []CartItem {
	out := make([]CartItem, 0, len(cart))
	for _, line := range cart {
		qty, ok := consumed[line.MedicineID]
		if !ok {
			out = append(out, line)
			continue
		}
		switch {
		case line.Quantity > qty:
			out = append(out, CartItem{MedicineID: line.MedicineID, Quantity: line.Quantity - qty})
		case line.Quantity == qty:
			// consumed entirely, drop the line
		default:
			// cart held fewer than the order consumed; the extra came from
			// outside the cart, leave the line untouched
			out = append(out, line)
		}
	}
	return out
}
