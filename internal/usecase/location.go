package usecase

import (
	"context"
	"sync"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
)

// locators holds one map picker per asset while requests are using it, so
// a newer search for an asset supersedes an older one still in flight.
type locators struct {
	mu      sync.Mutex
	pickers map[string]*locator
}

type locator struct {
	picker *geocode.Picker
	refs   int
}

func newLocators() *locators {
	return &locators{pickers: make(map[string]*locator)}
}

func (ls *locators) acquire(uid string, create func() *geocode.Picker) *geocode.Picker {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	l, ok := ls.pickers[uid]
	if !ok {
		l = &locator{picker: create()}
		ls.pickers[uid] = l
	}
	l.refs++
	return l.picker
}

// release drops a reference to the picker of uid. The last one out closes
// it, outside ls.mu since Close waits for a running click on that asset.
func (ls *locators) release(uid string) {
	ls.mu.Lock()
	l, ok := ls.pickers[uid]
	if !ok {
		ls.mu.Unlock()
		return
	}
	l.refs--
	last := l.refs <= 0
	if last {
		delete(ls.pickers, uid)
	}
	ls.mu.Unlock()

	if last {
		l.picker.Close()
	}
}

type LocationView struct {
	Location *Location
	View     geocode.View
}

func toPoint(l *Location) *geocode.Point {
	if l == nil {
		return nil
	}
	return &geocode.Point{Lat: l.Lat, Lng: l.Lng}
}

func toLocation(p *geocode.Point) *Location {
	if p == nil {
		return nil
	}
	return &Location{Lat: p.Lat, Lng: p.Lng}
}

// withPicker runs fn against the picker of uid and reports the location fn
// settled on. The asset must exist.
func (u Usecase) withPicker(ctx context.Context, uid string, fn func(*geocode.Picker) (*Location, error)) (LocationView, error) {
	asset, err := u.repo.GetAssetByUID(ctx, uid)
	if err != nil {
		return LocationView{}, err
	}

	picker := u.locators.acquire(uid, func() *geocode.Picker {
		return geocode.NewPicker(u.geocoder, toPoint(asset.Location),
			func(ctx context.Context, p *geocode.Point) error {
				return u.SetAssetLocation(ctx, uid, toLocation(p))
			})
	})
	defer u.locators.release(uid)

	loc, err := fn(picker)
	if err != nil {
		return LocationView{}, err
	}
	return LocationView{Location: loc, View: picker.View()}, nil
}

// PickAssetLocation stores a point chosen on the map.
func (u Usecase) PickAssetLocation(ctx context.Context, uid string, loc Location) (LocationView, error) {
	return u.withPicker(ctx, uid, func(p *geocode.Picker) (*Location, error) {
		if err := p.Click(ctx, geocode.Point{Lat: loc.Lat, Lng: loc.Lng}); err != nil {
			return nil, err
		}
		return &loc, nil
	})
}

// ClearAssetLocation removes the stored point; the view stays put.
func (u Usecase) ClearAssetLocation(ctx context.Context, uid string) (LocationView, error) {
	return u.withPicker(ctx, uid, func(p *geocode.Picker) (*Location, error) {
		return nil, p.Clear(ctx)
	})
}

// SearchAssetLocation geocodes text and stores the first match. It returns
// geocode.ErrSuperseded when a newer search for the same asset started
// before this one finished.
func (u Usecase) SearchAssetLocation(ctx context.Context, uid, text string) (LocationView, error) {
	return u.withPicker(ctx, uid, func(p *geocode.Picker) (*Location, error) {
		pt, err := p.Search(ctx, text)
		if err != nil {
			return nil, err
		}
		return toLocation(&pt), nil
	})
}

// Geocode is the forgiving lookup behind the address search box.
func (u Usecase) Geocode(ctx context.Context, text string) []geocode.Place {
	return geocode.Lookup(ctx, u.geocoder, text)
}
