package programs

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-conductor/common"
)

const (
	gravity     = -1.8
	restitution = 0.85
)

type particle struct {
	x, y   float32
	vx, vy float32
}

// simulation advances particles in clip space. Steps are split into chunks that run on a worker
// pool; each chunk writes only its own particles and its own slice of the vertex bytes.
type simulation struct {
	particles []particle
	chunk     int
	vertices  []byte
}

func newSimulation(count, chunk int, seed uint64) *simulation {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := &simulation{
		particles: make([]particle, count),
		chunk:     max(chunk, 1),
		vertices:  make([]byte, count*8),
	}
	for i := range s.particles {
		s.particles[i] = particle{
			x:  rng.Float32()*2 - 1,
			y:  rng.Float32()*2 - 1,
			vx: rng.Float32() - 0.5,
			vy: rng.Float32() - 0.5,
		}
	}
	s.pack(0, count)
	return s
}

// step advances every particle by dt seconds, handing one task per chunk to submit. With a nil
// submit the whole step runs inline.
func (s *simulation) step(submit func(worker.Task), dt float32) {
	if submit == nil {
		s.advance(0, len(s.particles), dt)
		return
	}

	// The pool's Wait only returns once workers idle out, so a WaitGroup is the per-step barrier.
	var wg sync.WaitGroup
	id := 0
	for lo := 0; lo < len(s.particles); lo += s.chunk {
		hi := min(lo+s.chunk, len(s.particles))
		wg.Add(1)
		start, end := lo, hi
		submit(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				s.advance(start, end, dt)
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
}

func (s *simulation) advance(lo, hi int, dt float32) {
	for i := lo; i < hi; i++ {
		p := &s.particles[i]
		p.vy += gravity * dt
		p.x += p.vx * dt
		p.y += p.vy * dt
		if p.x < -1 || p.x > 1 {
			p.x = common.Clamp(p.x, -1, 1)
			p.vx = -p.vx * restitution
		}
		if p.y < -1 || p.y > 1 {
			p.y = common.Clamp(p.y, -1, 1)
			p.vy = -p.vy * restitution
		}
	}
	s.pack(lo, hi)
}

// pack writes positions lo..hi as little-endian vec2<f32>.
func (s *simulation) pack(lo, hi int) {
	for i := lo; i < hi; i++ {
		p := s.particles[i]
		binary.LittleEndian.PutUint32(s.vertices[i*8:], math.Float32bits(p.x))
		binary.LittleEndian.PutUint32(s.vertices[i*8+4:], math.Float32bits(p.y))
	}
}
