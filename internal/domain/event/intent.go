package event

// Intent is a single notification ready for dispatch. Intents are
// produced per cycle and never persisted; the cycle commits the key to
// the ledger only after the dispatcher reports success.
type Intent struct {
	Key    Key
	Kind   Kind
	Phone  string
	Params map[string]string
}
