package storage

// Namespace scopes KV keys by a user identifier. An empty identifier means no
// storage is available for the caller: reads see an empty store and writes are
// discarded, so the rest of the system never has to special-case a missing
// user.
type Namespace struct {
	kv     KV
	userID string
}

// ForUser binds kv to the given user identifier.
func ForUser(kv KV, userID string) Namespace {
	return Namespace{kv: kv, userID: userID}
}

// Detached reports whether the namespace has no backing storage.
func (n Namespace) Detached() bool {
	return n.kv == nil || n.userID == ""
}

func (n Namespace) key(name string) string {
	return n.userID + ":" + name
}

func (n Namespace) Get(name string) ([]byte, bool, error) {
	if n.Detached() {
		return nil, false, nil
	}
	return n.kv.Get(n.key(name))
}

func (n Namespace) Put(name string, value []byte) error {
	if n.Detached() {
		return nil
	}
	return n.kv.Put(n.key(name), value)
}

func (n Namespace) Delete(name string) error {
	if n.Detached() {
		return nil
	}
	return n.kv.Delete(n.key(name))
}
