package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct {
	value   *Point
	changes int
}

func (o *owner) set(_ context.Context, p *Point) error {
	o.changes++
	if p == nil {
		o.value = nil
		return nil
	}
	v := *p
	o.value = &v
	return nil
}

type staticSearcher struct {
	results []Result
	err     error
}

func (s staticSearcher) Search(context.Context, Query) ([]Result, error) {
	return s.results, s.err
}

func TestPicker_InitialView(t *testing.T) {
	o := &owner{}
	p := NewPicker(staticSearcher{}, nil, o.set)
	assert.Equal(t, View{Center: DefaultCenter, Zoom: 12}, p.View())

	start := Point{Lat: 41, Lng: 29}
	p = NewPicker(staticSearcher{}, &start, o.set)
	assert.Equal(t, View{Center: start, Zoom: 16}, p.View())
}

func TestPicker_ClickAndClear(t *testing.T) {
	ctx := context.Background()
	o := &owner{}
	p := NewPicker(staticSearcher{}, nil, o.set)

	require.NoError(t, p.Click(ctx, Point{Lat: 40.1, Lng: 33.2}))
	require.NotNil(t, o.value)
	assert.Equal(t, Point{Lat: 40.1, Lng: 33.2}, *o.value)
	assert.Equal(t, View{Center: Point{Lat: 40.1, Lng: 33.2}, Zoom: 15}, p.View())

	require.NoError(t, p.Clear(ctx))
	assert.Nil(t, o.value)
	// clearing does not recenter
	assert.Equal(t, Point{Lat: 40.1, Lng: 33.2}, p.View().Center)
}

func TestPicker_SearchSelectsFirstResult(t *testing.T) {
	o := &owner{}
	s := staticSearcher{results: []Result{
		{DisplayName: "first", Lat: "39.9", Lon: "32.8"},
		{DisplayName: "second", Lat: "1", Lon: "1"},
	}}
	p := NewPicker(s, nil, o.set)

	pt, err := p.Search(context.Background(), "  Kızılay  ")
	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 39.9, Lng: 32.8}, pt)
	assert.Equal(t, &pt, o.value)
	assert.Equal(t, View{Center: pt, Zoom: 16}, p.View())
}

func TestPicker_SearchFailuresKeepSelection(t *testing.T) {
	existing := Point{Lat: 38.4, Lng: 27.1}

	testCases := []struct {
		name    string
		s       staticSearcher
		query   string
		wantErr error
	}{
		{"no results", staticSearcher{}, "nowhere", ErrNotFound},
		{"bad coordinate", staticSearcher{results: []Result{{Lat: "?", Lon: "1"}}}, "somewhere", ErrBadCoordinate},
		{"upstream", staticSearcher{err: ErrUpstream}, "somewhere", ErrUpstream},
		{"empty query", staticSearcher{}, "   ", ErrEmptyQuery},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := &owner{value: &existing}
			p := NewPicker(tc.s, &existing, o.set)

			_, err := p.Search(context.Background(), tc.query)
			assert.ErrorIs(t, err, tc.wantErr)
			require.NotNil(t, o.value)
			assert.Equal(t, existing, *o.value)
			assert.Equal(t, 0, o.changes)
			assert.Equal(t, View{Center: existing, Zoom: 16}, p.View())
		})
	}
}

// blockingSearcher waits until released or cancelled.
type blockingSearcher struct {
	started chan struct{}
	release chan struct{}
	result  Result
}

func (s *blockingSearcher) Search(ctx context.Context, _ Query) ([]Result, error) {
	s.started <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
		return []Result{s.result}, nil
	}
}

func TestPicker_NewSearchSupersedesInFlight(t *testing.T) {
	o := &owner{}
	s := &blockingSearcher{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
		result:  Result{Lat: "10", Lon: "20"},
	}
	p := NewPicker(s, nil, o.set)

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Search(context.Background(), "first")
		firstErr <- err
	}()
	<-s.started

	secondDone := make(chan error, 1)
	go func() {
		_, err := p.Search(context.Background(), "second")
		secondDone <- err
	}()
	<-s.started

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first search was not cancelled")
	}
	assert.Nil(t, o.value)

	close(s.release)
	require.NoError(t, <-secondDone)
	require.NotNil(t, o.value)
	assert.Equal(t, Point{Lat: 10, Lng: 20}, *o.value)
	assert.Equal(t, 1, o.changes)
}

func TestPicker_CloseDiscardsInFlight(t *testing.T) {
	o := &owner{}
	s := &blockingSearcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	p := NewPicker(s, nil, o.set)

	done := make(chan error, 1)
	go func() {
		_, err := p.Search(context.Background(), "somewhere")
		done <- err
	}()
	<-s.started
	p.Close()

	err := <-done
	assert.True(t, errors.Is(err, ErrSuperseded))
	assert.Equal(t, 0, o.changes)
}

func TestPicker_ChangeErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	p := NewPicker(staticSearcher{results: []Result{{Lat: "1", Lon: "2"}}}, nil,
		func(context.Context, *Point) error { return boom })

	_, err := p.Search(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, p.Click(context.Background(), Point{}), boom)
	assert.Equal(t, View{Center: DefaultCenter, Zoom: 12}, p.View())
}

func TestPicker_ClickDiscardsInFlightSearch(t *testing.T) {
	o := &owner{}
	s := &blockingSearcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  Result{Lat: "39", Lon: "32"},
	}
	p := NewPicker(s, nil, o.set)

	done := make(chan error, 1)
	go func() {
		_, err := p.Search(context.Background(), "Kızılay")
		done <- err
	}()
	<-s.started

	require.NoError(t, p.Click(context.Background(), Point{Lat: 41, Lng: 29}))
	close(s.release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return")
	}
	require.NotNil(t, o.value)
	assert.Equal(t, Point{Lat: 41, Lng: 29}, *o.value)
	assert.Equal(t, 1, o.changes)
	assert.Equal(t, Point{Lat: 41, Lng: 29}, p.View().Center)
}

func TestPicker_ClearDiscardsInFlightSearch(t *testing.T) {
	o := &owner{}
	s := &blockingSearcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  Result{Lat: "39", Lon: "32"},
	}
	start := Point{Lat: 38, Lng: 27}
	p := NewPicker(s, &start, o.set)

	done := make(chan error, 1)
	go func() {
		_, err := p.Search(context.Background(), "Kızılay")
		done <- err
	}()
	<-s.started

	require.NoError(t, p.Clear(context.Background()))
	close(s.release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Nil(t, o.value)
	assert.Equal(t, 1, o.changes)
}
