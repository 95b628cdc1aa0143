package redis

// DefaultNamespace prefixes every key the store writes.
const DefaultNamespace = "herald"

// keyspace builds keys under one namespace so several deployments can share
// a Redis database.
type keyspace struct {
	ns string
}

func (k keyspace) correlation(entityID string) string {
	return k.ns + ":corr:" + entityID
}

func (k keyspace) record(recID string) string {
	return k.ns + ":rec:" + recID
}

// recordIndex is the sorted set of every record id, scored by creation time.
func (k keyspace) recordIndex() string {
	return k.ns + ":z:rec:all"
}

// entityIndex is the sorted set of record ids for one entity.
func (k keyspace) entityIndex(entityID string) string {
	return k.ns + ":z:rec:entity:" + entityID
}
