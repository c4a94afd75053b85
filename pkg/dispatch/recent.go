package dispatch

import (
	"container/list"
	"sync"
	"time"
)

type recentItem struct {
	buildID   int64
	expiresAt time.Time
}

// recentBuilds is an LRU set of build ids with a TTL per entry.
type recentBuilds struct {
	mu      sync.Mutex
	items   map[int64]*list.Element
	lru     *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

func newRecentBuilds(maxSize int, ttl time.Duration) *recentBuilds {
	return &recentBuilds{
		items:   make(map[int64]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// add records id and reports whether it was absent (or expired).
func (r *recentBuilds) add(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if elem, exists := r.items[id]; exists {
		item := elem.Value.(*recentItem)
		if now.Before(item.expiresAt) {
			return false
		}
		item.expiresAt = now.Add(r.ttl)
		r.lru.MoveToFront(elem)
		return true
	}

	r.items[id] = r.lru.PushFront(&recentItem{buildID: id, expiresAt: now.Add(r.ttl)})
	if r.lru.Len() > r.maxSize {
		r.removeElement(r.lru.Back())
	}
	return true
}

func (r *recentBuilds) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elem, exists := r.items[id]; exists {
		r.removeElement(elem)
	}
}

func (r *recentBuilds) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

func (r *recentBuilds) removeElement(elem *list.Element) {
	r.lru.Remove(elem)
	delete(r.items, elem.Value.(*recentItem).buildID)
}
