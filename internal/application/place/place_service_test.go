package place

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/tests/testutil"
	"go.uber.org/zap"
)

type placeFixture struct {
	places  *testutil.MockSavedPlaceRepository
	details *testutil.MockDetailsProvider
	nearby  *testutil.MockNearbySearcher
	svc     *PlaceService
}

func newPlaceFixture() *placeFixture {
	f := &placeFixture{
		places:  new(testutil.MockSavedPlaceRepository),
		details: new(testutil.MockDetailsProvider),
		nearby:  new(testutil.MockNearbySearcher),
	}
	f.svc = NewPlaceService(f.places, f.details, f.nearby, nil, zap.NewNop())
	return f
}

func validSaveInput() SaveInput {
	return SaveInput{
		Name:             "Reading Terminal Market",
		FormattedAddress: "51 N 12th St, Philadelphia, PA 19107",
		Latitude:         39.9533,
		Longitude:        -75.1593,
		PlaceID:          "ChIJ8Wk6jSzGxokR",
	}
}

func TestPlaceService_SavePlace_Success(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.places.On("ExistsForUser", ctx, userID, "ChIJ8Wk6jSzGxokR").Return(false, nil)
	f.places.On("Create", ctx, mock.AnythingOfType("*place.SavedPlace")).Return(nil)

	result, err := f.svc.SavePlace(ctx, userID, validSaveInput())
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, "ChIJ8Wk6jSzGxokR", result.PlaceID)
	f.places.AssertExpectations(t)
}

func TestPlaceService_SavePlace_WithoutProviderID(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	in := validSaveInput()
	in.PlaceID = ""

	f.places.On("Create", ctx, mock.AnythingOfType("*place.SavedPlace")).Return(nil)

	result, err := f.svc.SavePlace(ctx, uuid.New(), in)
	require.NoError(t, err)
	assert.Empty(t, result.PlaceID)
	f.places.AssertNotCalled(t, "ExistsForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceService_SavePlace_Conflict(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("pre-check", func(t *testing.T) {
		f := newPlaceFixture()
		f.places.On("ExistsForUser", ctx, userID, "ChIJ8Wk6jSzGxokR").Return(true, nil)

		_, err := f.svc.SavePlace(ctx, userID, validSaveInput())
		assert.True(t, shared.IsCode(err, shared.CodeConflict))
		assert.Equal(t, "Place already saved", err.Error())
		f.places.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("constraint", func(t *testing.T) {
		f := newPlaceFixture()
		f.places.On("ExistsForUser", ctx, userID, "ChIJ8Wk6jSzGxokR").Return(false, nil)
		f.places.On("Create", ctx, mock.Anything).Return(shared.ErrConflict)

		_, err := f.svc.SavePlace(ctx, userID, validSaveInput())
		assert.True(t, shared.IsCode(err, shared.CodeConflict))
	})
}

func TestPlaceService_SavePlace_Validation(t *testing.T) {
	f := newPlaceFixture()
	in := validSaveInput()
	in.Latitude = 120

	_, err := f.svc.SavePlace(context.Background(), uuid.New(), in)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = f.svc.SavePlace(context.Background(), uuid.Nil, validSaveInput())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestPlaceService_ListAndCheck(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	userID := uuid.New()
	pid := "p1"

	f.places.On("FindByUser", ctx, userID).Return([]*place.SavedPlace{
		{BaseEntity: shared.NewBaseEntity(), UserID: userID, Name: "A", PlaceID: &pid},
		{BaseEntity: shared.NewBaseEntity(), UserID: userID, Name: "B"},
	}, nil)
	f.places.On("ExistsForUser", ctx, userID, "p1").Return(true, nil)

	list, err := f.svc.ListPlaces(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].PlaceID)
	assert.Empty(t, list[1].PlaceID)

	saved, err := f.svc.IsPlaceSaved(ctx, userID, " p1 ")
	require.NoError(t, err)
	assert.True(t, saved)

	_, err = f.svc.IsPlaceSaved(ctx, userID, "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestPlaceService_DeleteSavedPlace(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	owner, other, id := uuid.New(), uuid.New(), uuid.New()

	f.places.On("Delete", ctx, owner, id).Return(nil)
	f.places.On("Delete", ctx, other, id).Return(shared.ErrNotFound)

	require.NoError(t, f.svc.DeleteSavedPlace(ctx, owner, id))

	err := f.svc.DeleteSavedPlace(ctx, other, id)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	assert.Equal(t, "Saved place not found", err.Error())
}

func TestPlaceService_GetPlaceDetails(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()

	f.details.On("PlaceDetails", ctx, "p1").Return(&place.Details{PlaceID: "p1", Name: "Museum"}, nil)
	f.details.On("PlaceDetails", ctx, "gone").Return(nil, shared.ErrNotFound)
	f.details.On("PlaceDetails", ctx, "down").Return(nil, shared.ErrUpstreamUnavailable)

	d, err := f.svc.GetPlaceDetails(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Museum", d.Name)

	_, err = f.svc.GetPlaceDetails(ctx, "gone")
	assert.Equal(t, "Place not found", err.Error())

	_, err = f.svc.GetPlaceDetails(ctx, "down")
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)

	_, err = f.svc.GetPlaceDetails(ctx, "  ")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestParseNearbyInput(t *testing.T) {
	tests := []struct {
		name    string
		input   NearbyInput
		want    place.NearbyQuery
		wantErr bool
	}{
		{
			name:  "defaults",
			input: NearbyInput{},
			want:  place.NearbyQuery{Latitude: DefaultLatitude, Longitude: DefaultLongitude, Radius: DefaultRadius, Type: DefaultPlaceType},
		},
		{
			name:  "explicit values",
			input: NearbyInput{Location: "40.7128, -74.0060", Radius: 1200, Type: "museum"},
			want:  place.NearbyQuery{Latitude: 40.7128, Longitude: -74.0060, Radius: 1200, Type: "museum"},
		},
		{name: "missing comma", input: NearbyInput{Location: "40.7"}, wantErr: true},
		{name: "bad latitude", input: NearbyInput{Location: "north,1"}, wantErr: true},
		{name: "latitude out of range", input: NearbyInput{Location: "95,1"}, wantErr: true},
		{name: "not a number", input: NearbyInput{Location: "NaN,NaN"}, wantErr: true},
		{name: "nan longitude", input: NearbyInput{Location: "40.7,nan"}, wantErr: true},
		{name: "infinite latitude", input: NearbyInput{Location: "+Inf,1"}, wantErr: true},
		{name: "radius too large", input: NearbyInput{Radius: 50001}, wantErr: true},
		{name: "negative radius", input: NearbyInput{Radius: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNearbyInput(tt.input)
			if tt.wantErr {
				assert.True(t, shared.IsCode(err, shared.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceService_SearchNearby(t *testing.T) {
	f := newPlaceFixture()
	ctx := context.Background()
	q := place.NearbyQuery{Latitude: DefaultLatitude, Longitude: DefaultLongitude, Radius: DefaultRadius, Type: DefaultPlaceType}
	f.nearby.On("SearchNearby", ctx, q).Return([]place.NearbyPlace{{PlaceID: "p1"}}, nil)

	results, err := f.svc.SearchNearby(ctx, NearbyInput{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = f.svc.SearchNearby(ctx, NearbyInput{Radius: 0, Location: "x"})
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = f.svc.SearchNearby(ctx, NearbyInput{Location: "NaN,NaN"})
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	f.nearby.AssertNumberOfCalls(t, "SearchNearby", 1)
}
