package tls

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/buf"
	"github.com/joshuapare/rtkit/internal/logger"
)

// Manager owns the template and the registry of thread blocks.
type Manager struct {
	heap *heap.Heap
	id   Identity

	mu     sync.Mutex // template installation, registry insert/remove
	tmpl   atomic.Pointer[Template]
	blocks sync.Map // thread id -> *Block
	live   int
}

// NewManager returns a Manager that stores blocks in h and identifies
// threads through id.
func NewManager(h *heap.Heap, id Identity) (*Manager, error) {
	if h == nil || id == nil {
		return nil, errors.New("tls: nil heap or identity")
	}
	return &Manager{heap: h, id: id}, nil
}

// InstallTemplate establishes the default image for every new block. It
// succeeds exactly once.
func (m *Manager) InstallTemplate(t *Template) error {
	if t == nil {
		return errors.Wrap(ErrBadTemplate, "nil template")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tmpl.Load() != nil {
		return ErrTemplateInstalled
	}
	m.tmpl.Store(t)
	logger.Debug("tls: template installed", "size", t.Size(), "align", t.Align())
	return nil
}

// Template returns the installed template, or nil.
func (m *Manager) Template() *Template { return m.tmpl.Load() }

// Current returns the calling thread's block, creating it from the
// template on first use.
func (m *Manager) Current() (*Block, error) {
	t := m.tmpl.Load()
	if t == nil {
		return nil, ErrNoTemplate
	}
	tid, err := m.id.ThreadID()
	if err != nil {
		return nil, errors.Wrap(err, "tls: thread identity")
	}
	if b, ok := m.blocks.Load(tid); ok {
		return b.(*Block), nil //nolint:errcheck // registry holds only *Block
	}
	return m.create(tid, t)
}

func (m *Manager) create(tid int, t *Template) (*Block, error) {
	align := max(t.Align(), uint64(heap.MinAlign))
	dataOff, _ := buf.AlignUp(errnoSize, t.Align())
	total := dataOff + uint64(t.Size())

	p, err := m.heap.AllocateAligned(align, total)
	if err != nil {
		return nil, errors.Wrapf(err, "tls: block for thread %d", tid)
	}
	mem, err := m.heap.Payload(p)
	if err != nil {
		return nil, errors.CombineErrors(err, m.heap.Release(p))
	}
	mem = mem[:total:total]
	clear(mem[:dataOff])
	copy(mem[dataOff:], t.image)

	b := &Block{tid: tid, base: p, mem: mem, dataOff: int(dataOff), size: t.Size()}

	m.mu.Lock()
	existing, loaded := m.blocks.LoadOrStore(tid, b)
	if !loaded {
		m.live++
	}
	m.mu.Unlock()
	if loaded {
		// Another caller sharing this identity won the race.
		return existing.(*Block), m.heap.Release(p) //nolint:errcheck // registry holds only *Block
	}

	logger.Debug("tls: block created", "thread", tid, "bytes", total)
	return b, nil
}

// Block returns the block of thread tid without creating one.
func (m *Manager) Block(tid int) (*Block, error) {
	if b, ok := m.blocks.Load(tid); ok {
		return b.(*Block), nil //nolint:errcheck // registry holds only *Block
	}
	return nil, errors.Wrapf(ErrNoThread, "thread %d", tid)
}

// Exit destroys the calling thread's block and returns its memory to the
// heap. A later Current starts again from the template.
func (m *Manager) Exit() error {
	tid, err := m.id.ThreadID()
	if err != nil {
		return errors.Wrap(err, "tls: thread identity")
	}
	return m.destroy(tid)
}

func (m *Manager) destroy(tid int) error {
	m.mu.Lock()
	v, ok := m.blocks.LoadAndDelete(tid)
	if ok {
		m.live--
	}
	m.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrNoThread, "thread %d", tid)
	}

	b := v.(*Block) //nolint:errcheck // registry holds only *Block
	b.mem = nil
	logger.Debug("tls: block destroyed", "thread", tid)
	return m.heap.Release(b.base)
}

// Threads lists the ids of threads with live blocks, in ascending order.
func (m *Manager) Threads() []int {
	m.mu.Lock()
	ids := make([]int, 0, m.live)
	m.mu.Unlock()
	m.blocks.Range(func(k, _ any) bool {
		ids = append(ids, k.(int)) //nolint:errcheck // registry keys are ints
		return true
	})
	slices.Sort(ids)
	return ids
}

// Close destroys every block.
func (m *Manager) Close() error {
	var err error
	for _, tid := range m.Threads() {
		err = errors.CombineErrors(err, m.destroy(tid))
	}
	return err
}
