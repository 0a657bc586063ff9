package tracker

// PostGameTracker is the set of servers currently between games: their
// match was recorded and the elapsed counter has not visibly reset yet.
// It is what guarantees a finished match is recorded at most once across
// consecutive polls. Owned by the single poll loop; not safe for
// concurrent use.
type PostGameTracker struct {
	servers map[int]struct{}
}

func NewPostGameTracker() *PostGameTracker {
	return &PostGameTracker{servers: make(map[int]struct{})}
}

func (t *PostGameTracker) Mark(serverID int) {
	t.servers[serverID] = struct{}{}
}

func (t *PostGameTracker) Unmark(serverID int) {
	delete(t.servers, serverID)
}

func (t *PostGameTracker) Contains(serverID int) bool {
	_, ok := t.servers[serverID]
	return ok
}

func (t *PostGameTracker) Len() int {
	return len(t.servers)
}
