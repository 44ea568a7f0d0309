package geocode

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrEmptyQuery = errors.New("geocode: empty query")
	ErrNotFound   = errors.New("geocode: no results")
	ErrSuperseded = errors.New("geocode: search superseded")
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type View struct {
	Center Point `json:"center"`
	Zoom   int   `json:"zoom"`
}

// DefaultCenter is where the map opens when nothing is selected (Ankara).
var DefaultCenter = Point{Lat: 39.9208, Lng: 32.8541}

const (
	defaultZoom  = 12
	selectedZoom = 16
	clickZoom    = 15
)

// ChangeFunc receives the new selection; nil means cleared. The picker never
// stores the point itself, the owner does.
type ChangeFunc func(ctx context.Context, p *Point) error

// Picker keeps a single optional point in sync with map clicks, a location
// search and a clear action. Only one search is live at a time: starting a
// new one, or closing the picker, discards the outcome of the previous one.
type Picker struct {
	searcher     Searcher
	onChange     ChangeFunc
	countryCodes []string

	mu     sync.Mutex
	view   View
	seq    uint64
	cancel context.CancelFunc
}

type PickerOption func(*Picker)

func WithCountryCodes(codes ...string) PickerOption {
	return func(p *Picker) { p.countryCodes = codes }
}

func NewPicker(s Searcher, initial *Point, onChange ChangeFunc, opts ...PickerOption) *Picker {
	p := &Picker{
		searcher:     s,
		onChange:     onChange,
		countryCodes: []string{"tr"},
		view:         View{Center: DefaultCenter, Zoom: defaultZoom},
	}
	if initial != nil {
		p.view = View{Center: *initial, Zoom: selectedZoom}
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Picker) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Click selects pt and brings it into view. A search still in flight is
// abandoned.
func (p *Picker) Click(ctx context.Context, pt Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.supersede()
	if err := p.onChange(ctx, &pt); err != nil {
		return err
	}
	p.view = View{Center: pt, Zoom: max(p.view.Zoom, clickZoom)}
	return nil
}

// Clear drops the selection and leaves the view where it is. A search still
// in flight is abandoned.
func (p *Picker) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.supersede()
	return p.onChange(ctx, nil)
}

// Search resolves text to its first candidate and selects it. Zero results
// or an unparseable coordinate leave the current selection untouched.
func (p *Picker) Search(ctx context.Context, text string) (Point, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Point{}, ErrEmptyQuery
	}

	p.mu.Lock()
	p.supersede()
	ctx, cancel := context.WithCancel(ctx)
	seq := p.seq
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	list, err := p.searcher.Search(ctx, Query{Text: text, Limit: 1, CountryCodes: p.countryCodes})

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		return Point{}, ErrSuperseded
	}
	p.cancel = nil

	if err != nil {
		return Point{}, err
	}
	if len(list) == 0 {
		return Point{}, ErrNotFound
	}
	place, err := list[0].Place()
	if err != nil {
		return Point{}, err
	}

	pt := Point{Lat: place.Lat, Lng: place.Lon}
	if err := p.onChange(ctx, &pt); err != nil {
		return Point{}, err
	}
	p.view = View{Center: pt, Zoom: selectedZoom}
	return pt, nil
}

// Close abandons any in-flight search.
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.supersede()
}

// supersede invalidates the running search, if any. Callers hold p.mu.
func (p *Picker) supersede() {
	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
