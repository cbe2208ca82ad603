package activities

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1024 * 1024
	// freecache refuses entries above 1/1024 of its size, a full year of days must fit
	minCacheSizeMB = 4
	dayRecordSize  = 10 // uint16 day of year + float64 meters
)

// StatsCache keeps the per-day distances behind every aggregation, one entry per user, filter and year.
// Each user has a generation number that is part of the keys; bumping it makes older entries unreachable.
type StatsCache struct {
	cache  *freecache.Cache
	expire int // seconds

	genMu sync.Mutex
	gens  map[int]uint64
}

func NewStatsCache(sizeMB int, ttl time.Duration) *StatsCache {
	if sizeMB < minCacheSizeMB {
		sizeMB = minCacheSizeMB
	}
	return &StatsCache{
		cache:  freecache.NewCache(sizeMB * megabyte),
		expire: int(ttl.Seconds()),
		gens:   make(map[int]uint64),
	}
}

// GetDays returns the cached per-day distances, oldest first. Safe on a nil cache.
func (c *StatsCache) GetDays(userID int, activityType string) ([]DistanceEntry, bool) {
	if c == nil {
		return nil, false
	}

	gen := c.generation(userID)
	yearsBytes, err := c.cache.Get(c.key(userID, gen, activityType, "years"))
	if err != nil {
		return nil, false
	}

	var years []int
	if err := json.Unmarshal(yearsBytes, &years); err != nil {
		log.Errorf("stats cache, unmarshal years for user %d: %s", userID, err)
		return nil, false
	}

	days := make([]DistanceEntry, 0)
	for _, year := range years {
		chunk, err := c.cache.Get(c.key(userID, gen, activityType, year))
		if err != nil {
			// evicted on its own, treat the whole filter as a miss
			return nil, false
		}
		yearDays, err := decodeYear(year, chunk)
		if err != nil {
			log.Errorf("stats cache, decode %d for user %d: %s", year, userID, err)
			return nil, false
		}
		days = append(days, yearDays...)
	}

	return days, true
}

// SetDays stores per-day distances as produced by SumPerDay.
func (c *StatsCache) SetDays(userID int, activityType string, days []DistanceEntry) {
	if c == nil {
		return
	}

	gen := c.generation(userID)
	byYear := make(map[int][]DistanceEntry)
	for _, d := range days {
		byYear[d.Day.Year()] = append(byYear[d.Day.Year()], d)
	}

	years := make([]int, 0, len(byYear))
	for year, yearDays := range byYear {
		if !c.set(userID, c.key(userID, gen, activityType, year), encodeYear(yearDays)) {
			return
		}
		years = append(years, year)
	}
	sort.Ints(years)

	yearsBytes, err := json.Marshal(years)
	if err != nil {
		log.Errorf("stats cache, marshal years for user %d: %s", userID, err)
		return
	}
	// the years index goes last, readers never see a partial filter
	c.set(userID, c.key(userID, gen, activityType, "years"), yearsBytes)
}

func (c *StatsCache) set(userID int, key, value []byte) bool {
	err := c.cache.Set(key, value, c.expire)
	if err == nil {
		return true
	}
	if errors.Is(err, freecache.ErrLargeEntry) {
		log.Debugf("stats cache, entry for user %d too large (%d bytes), not cached", userID, len(value))
		return false
	}
	log.Errorf("stats cache, set for user %d: %s", userID, err)
	return false
}

// Invalidate drops every cached aggregation of the user.
func (c *StatsCache) Invalidate(userID int) {
	if c == nil {
		return
	}

	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[userID]++
}

func (c *StatsCache) generation(userID int) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gens[userID]
}

func (c *StatsCache) key(userID int, gen uint64, activityType string, part any) []byte {
	return []byte(fmt.Sprintf("stats::%d::%d::%s::%v", userID, gen, activityType, part))
}

func encodeYear(days []DistanceEntry) []byte {
	buf := make([]byte, 0, len(days)*dayRecordSize)
	for _, d := range days {
		buf = binary.BigEndian.AppendUint16(buf, uint16(d.Day.YearDay()))
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(d.Distance))
	}
	return buf
}

func decodeYear(year int, chunk []byte) ([]DistanceEntry, error) {
	if len(chunk)%dayRecordSize != 0 {
		return nil, fmt.Errorf("chunk length %d", len(chunk))
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := make([]DistanceEntry, 0, len(chunk)/dayRecordSize)
	for i := 0; i < len(chunk); i += dayRecordSize {
		yearDay := int(binary.BigEndian.Uint16(chunk[i:]))
		days = append(days, DistanceEntry{
			Day:      jan1.AddDate(0, 0, yearDay-1),
			Distance: math.Float64frombits(binary.BigEndian.Uint64(chunk[i+2:])),
		})
	}
	return days, nil
}
