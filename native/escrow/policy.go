package escrow

// Stateless authorization predicates consulted before every mutation. Each
// failure carries a distinct kind so callers can tell a pause apart from a
// role mismatch.

func requireNotPaused(paused bool) error {
	if paused {
		return ErrPaused
	}
	return nil
}

func requireOwner(caller, owner string) error {
	if owner == "" || caller != owner {
		return ErrUnauthorized
	}
	return nil
}

// requireParty admits only the escrow principals (payer or payee).
func requireParty(caller string, esc *Escrow) error {
	if esc == nil {
		return ErrEscrowNotFound
	}
	if caller != esc.Payer && caller != esc.Payee {
		return ErrUnauthorized
	}
	return nil
}

// requireRole admits exactly one expected principal: the payee for release,
// the payer for refund, the oracle for resolution.
func requireRole(caller, expected string) error {
	if expected == "" || caller != expected {
		return ErrUnauthorized
	}
	return nil
}
