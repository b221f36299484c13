// Package history provides the implementation for tracking and persisting page run outcomes.
package history

import (
	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for page run records.
var cacher = gache.New[map[string]*SavedRun](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical run records from the persistent store.
func Get() (map[string]*SavedRun, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedRun), nil
	}
	return cached, nil
}

// Save persists the outcome of a page run to the history registry.
// Re-running a page overwrites its previous record.
func Save(run *SavedRun) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	saved[run.encode()] = run
	return cacher.Set(saved)
}

// Remove permanently deletes a specific run record from the history registry.
func Remove(run *SavedRun) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, run.encode())
	return cacher.Set(saved)
}
