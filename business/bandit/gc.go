package bandit

import (
	"sort"
	"time"
)

// evictLocked drops the least recently used clean models once the resident
// set grows past MaxResidentModels. Dirty and flushing models are never
// dropped, so the cap can be exceeded while writes are pending.
func (s *ModelStore) evictLocked(keep uint) {
	limit := s.cfg.MaxResidentModels
	if limit <= 0 || len(s.models) <= limit {
		return
	}

	type modelInfo struct {
		userID     uint
		lastAccess time.Time
		updates    int
	}

	infos := make([]modelInfo, 0, len(s.models))
	for id, r := range s.models {
		if id == keep || r.state != WriteClean {
			continue
		}
		infos = append(infos, modelInfo{
			userID:     id,
			lastAccess: r.lastAccess,
			updates:    r.model.Updates,
		})
	}

	// Sort ascending: oldest & least-trained first
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].lastAccess.Equal(infos[j].lastAccess) {
			return infos[i].updates < infos[j].updates
		}
		return infos[i].lastAccess.Before(infos[j].lastAccess)
	})

	toDrop := len(s.models) - limit
	for i := 0; i < toDrop && i < len(infos); i++ {
		delete(s.models, infos[i].userID)
	}
}
