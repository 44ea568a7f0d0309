package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
)

func TestSearchAssetLocationNoResultKeepsPoint(t *testing.T) {
	empty := searchFunc(func(context.Context, geocode.Query) ([]geocode.Result, error) {
		return nil, nil
	})
	f := newFixture(empty, Asset{UID: "A", Location: &Location{Lat: 39.9, Lng: 32.8}})

	_, err := f.u.SearchAssetLocation(context.Background(), "A", "olmayan sokak")

	assert.ErrorIs(t, err, geocode.ErrNotFound)
	assert.Equal(t, &Location{Lat: 39.9, Lng: 32.8}, f.repo.assets[0].Location)
}

func TestSearchAssetLocation(t *testing.T) {
	var got geocode.Query
	s := searchFunc(func(_ context.Context, q geocode.Query) ([]geocode.Result, error) {
		got = q
		return []geocode.Result{{DisplayName: "Kızılay, Ankara", Lat: "39.92", Lon: "32.85"}}, nil
	})
	f := newFixture(s, Asset{UID: "A"})

	v, err := f.u.SearchAssetLocation(context.Background(), "A", "Kızılay")

	require.NoError(t, err)
	assert.Equal(t, geocode.Query{Text: "Kızılay", Limit: 1, CountryCodes: []string{"tr"}}, got)
	assert.Equal(t, &Location{Lat: 39.92, Lng: 32.85}, v.Location)
	assert.Equal(t, 16, v.View.Zoom)
	assert.Equal(t, &Location{Lat: 39.92, Lng: 32.85}, f.repo.assets[0].Location)
}

func TestSearchAssetLocationSupersedes(t *testing.T) {
	started := make(chan struct{})
	s := searchFunc(func(ctx context.Context, q geocode.Query) ([]geocode.Result, error) {
		if q.Text == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []geocode.Result{{DisplayName: "fast", Lat: "40", Lon: "30"}}, nil
	})
	f := newFixture(s, Asset{UID: "A"})

	errc := make(chan error, 1)
	go func() {
		_, err := f.u.SearchAssetLocation(context.Background(), "A", "slow")
		errc <- err
	}()
	<-started

	v, err := f.u.SearchAssetLocation(context.Background(), "A", "fast")
	require.NoError(t, err)
	assert.Equal(t, &Location{Lat: 40, Lng: 30}, v.Location)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, geocode.ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("slow search was not cancelled")
	}
	assert.Equal(t, &Location{Lat: 40, Lng: 30}, f.repo.assets[0].Location)
	assert.Empty(t, f.u.locators.pickers)
}

func TestPickAndClearAssetLocation(t *testing.T) {
	f := newFixture(nil, Asset{UID: "A"})

	v, err := f.u.PickAssetLocation(context.Background(), "A", Location{Lat: 38.42, Lng: 27.14})
	require.NoError(t, err)
	assert.Equal(t, &Location{Lat: 38.42, Lng: 27.14}, f.repo.assets[0].Location)
	assert.Equal(t, geocode.Point{Lat: 38.42, Lng: 27.14}, v.View.Center)
	assert.Equal(t, 15, v.View.Zoom)

	v, err = f.u.ClearAssetLocation(context.Background(), "A")
	require.NoError(t, err)
	assert.Nil(t, v.Location)
	assert.Nil(t, f.repo.assets[0].Location)

	_, err = f.u.PickAssetLocation(context.Background(), "B", Location{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeocode(t *testing.T) {
	calls := 0
	s := searchFunc(func(context.Context, geocode.Query) ([]geocode.Result, error) {
		calls++
		return []geocode.Result{{DisplayName: "Konak, İzmir", Lat: "38.41", Lon: "27.12"}}, nil
	})
	f := newFixture(s)

	assert.Empty(t, f.u.Geocode(context.Background(), "ab"))
	assert.Equal(t, 0, calls)

	places := f.u.Geocode(context.Background(), "Konak")
	require.Len(t, places, 1)
	assert.Equal(t, 38.41, places[0].Lat)
}

func TestLocatorsReleaseDoesNotBlockOtherAssets(t *testing.T) {
	ls := newLocators()

	entered := make(chan struct{})
	unblock := make(chan struct{})
	slowWrite := func(context.Context, *geocode.Point) error {
		close(entered)
		<-unblock
		return nil
	}

	a := ls.acquire("A", func() *geocode.Picker { return geocode.NewPicker(nil, nil, slowWrite) })
	clicked := make(chan error, 1)
	go func() { clicked <- a.Click(context.Background(), geocode.Point{Lat: 1, Lng: 2}) }()
	<-entered

	// the last reference to A goes away while its click is still writing
	released := make(chan struct{})
	go func() {
		ls.release("A")
		close(released)
	}()
	time.Sleep(20 * time.Millisecond)

	other := make(chan struct{})
	go func() {
		ls.acquire("B", func() *geocode.Picker { return geocode.NewPicker(nil, nil, nil) })
		ls.release("B")
		close(other)
	}()

	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("picker registry blocked by a write on another asset")
	}

	close(unblock)
	require.NoError(t, <-clicked)
	<-released
	assert.Empty(t, ls.pickers)
}
