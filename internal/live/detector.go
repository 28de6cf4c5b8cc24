package live

import "sync"

// Detector remembers whether each site has a baseline and its last non-empty
// snapshot, and reports rows that were not in it. Rows are identified by
// (time, amount) only.
type Detector struct {
	mu     sync.Mutex
	last   map[string]Snapshot
	primed map[string]bool
}

// NewDetector returns a detector with no history.
func NewDetector() *Detector {
	return &Detector{last: make(map[string]Snapshot), primed: make(map[string]bool)}
}

// Observe diffs snap against the site's previous snapshot and returns the new
// rows in snapshot order. An empty snapshot yields nothing and leaves the
// previous snapshot in place; any other snapshot replaces it.
func (d *Detector) Observe(site string, snap Snapshot) []Row {
	if len(snap) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[rowKey]struct{}, len(d.last[site]))
	for _, row := range d.last[site] {
		seen[row.key()] = struct{}{}
	}
	var fresh []Row
	for _, row := range snap {
		if _, ok := seen[row.key()]; !ok {
			fresh = append(fresh, row)
		}
	}
	d.last[site] = cloneSnapshot(snap)
	return fresh
}

// Prime marks site as having a baseline and stores snap as that baseline
// without reporting anything. An empty snap primes an empty baseline, so the
// first rows observed afterwards are all new.
func (d *Detector) Prime(site string, snap Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.primed[site] = true
	if len(snap) > 0 {
		d.last[site] = cloneSnapshot(snap)
	}
}

// Primed reports whether site has a baseline.
func (d *Detector) Primed(site string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.primed[site]
}

// Last returns the stored snapshot for site.
func (d *Detector) Last(site string) (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap, ok := d.last[site]
	if !ok {
		return nil, false
	}
	return cloneSnapshot(snap), true
}

func cloneSnapshot(snap Snapshot) Snapshot {
	out := make(Snapshot, len(snap))
	copy(out, snap)
	return out
}
