package storage

// Lifetime selects which persistence medium a key lives in.
type Lifetime int

const (
	// Durable survives restarts of the shopper's session.
	Durable Lifetime = iota
	// Session expires with the shopper's session.
	Session
)

func (l Lifetime) String() string {
	switch l {
	case Durable:
		return "durable"
	case Session:
		return "session"
	default:
		return "unknown"
	}
}

// Keys used by the storefront core.
const (
	KeyItems = "items"
	KeyUser  = "user"
	KeyOrder = "order"
)
