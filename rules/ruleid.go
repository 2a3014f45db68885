package rules

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// idGenerator injects unique rule ids into policy entries while keeping
// them consistent across loads: the id is a hash of the entry itself, so
// an unchanged entry keeps its id even when the policy moves around.
type idGenerator struct {
	seen map[string]int
	seq  int
}

func newIDGenerator() *idGenerator {
	return &idGenerator{seen: make(map[string]int)}
}

// inject adds a rule_id to ent unless one is already present. When two
// entries hash identically, a sequence suffix keeps the ids unique.
func (g *idGenerator) inject(ent map[string]any) error {
	g.seq++

	if id, ok := ent["rule_id"].(string); ok && id != "" {
		g.seen[id]++
		return nil
	}

	data, err := json.Marshal(ent)
	if err != nil {
		return fmt.Errorf("rule entry is not encodable: %w", err)
	}
	sum := md5.Sum(data)
	id := hex.EncodeToString(sum[:])
	if _, dup := g.seen[id]; dup {
		id = fmt.Sprintf("%s.%d", id, g.seq)
	}
	ent["rule_id"] = id
	g.seen[id]++
	return nil
}
