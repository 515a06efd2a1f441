// Package graphics is an opt-in extension wiring the Kitty terminal graphics
// protocol into a vtgrid session. It is never imported by the core grid
// model; a host attaches it explicitly via vtgrid.WithGraphics.
package graphics

import (
	"crypto/sha256"
	"sync"
	"time"
)

// Image stores decoded pixels and metadata for one transmitted image.
type Image struct {
	ID         uint32
	Width      uint32
	Height     uint32
	Data       []byte // RGBA, 4 bytes per pixel
	Hash       [32]byte
	CreatedAt  time.Time
	AccessedAt time.Time
}

// Placement is one displayed instance of an Image at a cell position.
type Placement struct {
	ID      uint32
	ImageID uint32

	Row, Col   int
	Cols, Rows int

	SrcX, SrcY uint32
	SrcW, SrcH uint32

	ZIndex int32

	OffsetX, OffsetY uint32
}

// Store holds images and their placements with an LRU memory budget,
// adapted from the host terminal's former inline image manager.
type Store struct {
	mu sync.RWMutex

	images     map[uint32]*Image
	placements map[uint32]*Placement
	hashToID   map[[32]byte]uint32

	nextImageID     uint32
	nextPlacementID uint32

	maxMemory  int64
	usedMemory int64

	accumulator            []byte
	accumulatorID          uint32
	accumulatorMore        bool
	accumulatorFormat      Format
	accumulatorWidth       uint32
	accumulatorHeight      uint32
	accumulatorCompression byte
}

// NewStore creates a Store with a 320MB default memory budget.
func NewStore() *Store {
	return &Store{
		images:     make(map[uint32]*Image),
		placements: make(map[uint32]*Placement),
		hashToID:   make(map[[32]byte]uint32),
		maxMemory:  320 * 1024 * 1024,
	}
}

// SetMaxMemory sets the image memory budget in bytes.
func (s *Store) SetMaxMemory(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxMemory = bytes
}

// Store adds image data, deduplicating by content hash, and returns its ID.
func (s *Store) StoreImage(width, height uint32, data []byte) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := sha256.Sum256(data)
	if existingID, ok := s.hashToID[hash]; ok {
		if img, ok := s.images[existingID]; ok {
			img.AccessedAt = time.Now()
			return existingID
		}
	}

	s.nextImageID++
	id := s.nextImageID
	s.storeLocked(id, width, height, data, hash)
	return id
}

// StoreImageWithID adds image data under an explicit ID, as Kitty's
// client-assigned image IDs require.
func (s *Store) StoreImageWithID(id, width, height uint32, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := sha256.Sum256(data)
	if old, ok := s.images[id]; ok {
		s.usedMemory -= int64(len(old.Data))
		delete(s.hashToID, old.Hash)
	}
	s.storeLocked(id, width, height, data, hash)
	if id >= s.nextImageID {
		s.nextImageID = id + 1
	}
}

func (s *Store) storeLocked(id, width, height uint32, data []byte, hash [32]byte) {
	now := time.Now()
	img := &Image{
		ID:         id,
		Width:      width,
		Height:     height,
		Data:       data,
		Hash:       hash,
		CreatedAt:  now,
		AccessedAt: now,
	}
	s.images[id] = img
	s.hashToID[hash] = id
	s.usedMemory += int64(len(data))
	if s.usedMemory > s.maxMemory {
		s.pruneLocked()
	}
}

// Image returns the image for id, or nil.
func (s *Store) Image(id uint32) *Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if img, ok := s.images[id]; ok {
		img.AccessedAt = time.Now()
		return img
	}
	return nil
}

// Place registers a new placement and assigns it an ID.
func (s *Store) Place(p *Placement) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlacementID++
	p.ID = s.nextPlacementID
	s.placements[p.ID] = p
	return p.ID
}

// Placements returns every active placement.
func (s *Store) Placements() []*Placement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Placement, 0, len(s.placements))
	for _, p := range s.placements {
		out = append(out, p)
	}
	return out
}

// DeleteImage removes an image and any placements referencing it.
func (s *Store) DeleteImage(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.images[id]; ok {
		s.usedMemory -= int64(len(img.Data))
		delete(s.hashToID, img.Hash)
		delete(s.images, id)
	}
	for pid, p := range s.placements {
		if p.ImageID == id {
			delete(s.placements, pid)
		}
	}
}

// RemovePlacementsForImage drops placements referencing imageID, keeping the
// image data itself.
func (s *Store) RemovePlacementsForImage(imageID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.placements {
		if p.ImageID == imageID {
			delete(s.placements, id)
		}
	}
}

// Clear removes every image and placement, and any in-flight chunked
// transfer state. Called on terminal reset (RIS) and full-screen erase.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = make(map[uint32]*Image)
	s.placements = make(map[uint32]*Placement)
	s.hashToID = make(map[[32]byte]uint32)
	s.usedMemory = 0
	s.accumulator = nil
}

// DeletePlacementsByPosition removes placements covering (row, col).
func (s *Store) DeletePlacementsByPosition(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.placements {
		if row >= p.Row && row < p.Row+p.Rows && col >= p.Col && col < p.Col+p.Cols {
			delete(s.placements, id)
		}
	}
}

// DeletePlacementsByZIndex removes placements at the given z-index.
func (s *Store) DeletePlacementsByZIndex(z int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.placements {
		if p.ZIndex == z {
			delete(s.placements, id)
		}
	}
}

// DeletePlacementsInRow removes placements intersecting row.
func (s *Store) DeletePlacementsInRow(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.placements {
		if row >= p.Row && row < p.Row+p.Rows {
			delete(s.placements, id)
		}
	}
}

// DeletePlacementsInColumn removes placements intersecting col.
func (s *Store) DeletePlacementsInColumn(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.placements {
		if col >= p.Col && col < p.Col+p.Cols {
			delete(s.placements, id)
		}
	}
}

// pruneLocked evicts least-recently-used, unreferenced images until usage
// falls under maxMemory. Must be called with s.mu held.
func (s *Store) pruneLocked() {
	referenced := make(map[uint32]bool)
	for _, p := range s.placements {
		referenced[p.ImageID] = true
	}

	type candidate struct {
		id   uint32
		time time.Time
		size int64
	}
	var candidates []candidate
	for id, img := range s.images {
		if !referenced[id] {
			candidates = append(candidates, candidate{id, img.AccessedAt, int64(len(img.Data))})
		}
	}
	for i := 0; i < len(candidates)-1; i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].time.Before(candidates[i].time) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	for _, c := range candidates {
		if s.usedMemory <= s.maxMemory {
			break
		}
		if img, ok := s.images[c.id]; ok {
			delete(s.hashToID, img.Hash)
			delete(s.images, c.id)
			s.usedMemory -= c.size
		}
	}
}

// UsedMemory reports current image memory usage in bytes.
func (s *Store) UsedMemory() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usedMemory
}

// ImageCount reports the number of stored images.
func (s *Store) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// PlacementCount reports the number of active placements.
func (s *Store) PlacementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.placements)
}
