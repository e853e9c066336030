// README: In-memory Database with RTDB semantics, used by tests and local runs.
package rtdb

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Memory mirrors the RTDB behaviour the stores rely on: JSON tree nodes,
// null deletes, atomic multi-location updates, and per-node transactions.
type Memory struct {
	mu   sync.RWMutex
	root map[string]any
}

func NewMemory() *Memory {
	return &Memory{root: map[string]any{}}
}

func (m *Memory) Get(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	node := m.lookup(splitPath(path))
	raw, err := json.Marshal(node)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (m *Memory) Set(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	node, err := normalize(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(splitPath(path), node)
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := splitPath(path)
	// Normalize everything first so the merge applies all-or-nothing.
	writes := make(map[string]any, len(fields))
	for k, v := range fields {
		node, err := normalize(v)
		if err != nil {
			return err
		}
		writes[k] = node
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, node := range writes {
		m.write(append(append([]string{}, base...), splitPath(k)...), node)
	}
	return nil
}

func (m *Memory) Push(ctx context.Context, path string, v any) (string, error) {
	key := newKey()
	if err := m.Set(ctx, path+"/"+key, v); err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) Transaction(ctx context.Context, path string, fn TxnFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	segs := splitPath(path)
	raw, err := json.Marshal(m.lookup(segs))
	if err != nil {
		return err
	}
	decode := func(v any) error { return json.Unmarshal(raw, v) }
	next, err := fn(decode)
	if err != nil {
		return err
	}
	node, err := normalize(next)
	if err != nil {
		return err
	}
	m.write(segs, node)
	return nil
}

func (m *Memory) GetByChildValue(ctx context.Context, path, child string, value, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want, err := normalize(value)
	if err != nil {
		return err
	}
	m.mu.RLock()
	matched := map[string]any{}
	if children, ok := m.lookup(splitPath(path)).(map[string]any); ok {
		for key, node := range children {
			fields, ok := node.(map[string]any)
			if !ok {
				continue
			}
			if reflect.DeepEqual(fields[child], want) {
				matched[key] = node
			}
		}
	}
	raw, err := json.Marshal(matched)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// lookup walks the tree; missing paths resolve to nil, as in RTDB.
func (m *Memory) lookup(segs []string) any {
	var node any = m.root
	for _, s := range segs {
		mp, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = mp[s]
	}
	return node
}

// write replaces the node at segs; a nil node deletes it.
func (m *Memory) write(segs []string, node any) {
	if len(segs) == 0 {
		if mp, ok := node.(map[string]any); ok {
			m.root = mp
		} else {
			m.root = map[string]any{}
		}
		return
	}
	parent := m.root
	for _, s := range segs[:len(segs)-1] {
		next, ok := parent[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			parent[s] = next
		}
		parent = next
	}
	leaf := segs[len(segs)-1]
	if node == nil {
		delete(parent, leaf)
		return
	}
	parent[leaf] = node
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// normalize round-trips v through JSON so stored nodes share one shape.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	return node, nil
}

func newKey() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
