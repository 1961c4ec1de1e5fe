package service

import (
	"context"
	"errors"
	"testing"

	"kinlab-backend/internal/kinetics"
	"kinlab-backend/internal/model"
	"kinlab-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKinetics stands in for the external service. Every call is recorded so
// tests can assert that invalid input never produces network traffic.
type fakeKinetics struct {
	calls int

	session    *model.Session
	sessionErr error

	ratesBody map[string]float64
	rates     *kinetics.RatesResult
	ratesErr  error
	onRates   func()

	plotLow, plotHigh float64
	plotImage         string
	plotErr           error
}

func (f *fakeKinetics) CreateSession(ctx context.Context, raw string) (*model.Session, error) {
	f.calls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeKinetics) GetRates(ctx context.Context, sessionID string, body map[string]float64) (*kinetics.RatesResult, error) {
	f.calls++
	f.ratesBody = body
	if f.onRates != nil {
		f.onRates()
	}
	if f.ratesErr != nil {
		return nil, f.ratesErr
	}
	return f.rates, nil
}

func (f *fakeKinetics) GetPlot(ctx context.Context, sessionID string, tLow, tHigh float64, mode model.PlotMode, body map[string]float64) (string, error) {
	f.calls++
	f.plotLow, f.plotHigh = tLow, tHigh
	if f.plotErr != nil {
		return "", f.plotErr
	}
	return f.plotImage, nil
}

func testSession() *model.Session {
	return &model.Session{
		ID:        "abc123",
		Species:   []string{"OH", "H2O"},
		Equations: []string{"OH+H2 -> H2O+H"},
	}
}

func newTestService(fake *fakeKinetics) (*MechanismService, store.SessionStore) {
	sessionStore := store.NewMemoryStore()
	return NewMechanismService(fake, sessionStore), sessionStore
}

func rateRequest() *model.RateQueryRequest {
	return &model.RateQueryRequest{
		Concentrations: map[string]string{"OH": "10", "H2O": "5"},
		Temperature:    "1000",
	}
}

func TestQueryRatesBodyShape(t *testing.T) {
	fake := &fakeKinetics{
		rates: &kinetics.RatesResult{
			ProgressRates: []float64{2.5},
			ReactionRates: []float64{-2.5, 2.5},
		},
	}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryRates(context.Background(), rateRequest())
	require.NoError(t, err)

	// one key per species plus _temp
	assert.Len(t, fake.ratesBody, 3)
	assert.Equal(t, 10.0, fake.ratesBody["OH"])
	assert.Equal(t, 5.0, fake.ratesBody["H2O"])
	assert.Equal(t, 1000.0, fake.ratesBody["_temp"])
}

func TestQueryRatesRendersReport(t *testing.T) {
	fake := &fakeKinetics{
		rates: &kinetics.RatesResult{
			ProgressRates: []float64{2.5},
			ReactionRates: []float64{-2.5, 2.5},
		},
	}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	report, err := svc.QueryRates(context.Background(), rateRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"Reaction 0: 2.5 / OH+H2 -> H2O+H"}, report.ReactionLines)
	assert.Equal(t, []string{"OH: -2.5", "H2O: 2.5"}, report.SpeciesLines)
	assert.Empty(t, report.CoefficientLines)
}

func TestQueryRatesRendersCoefficients(t *testing.T) {
	fake := &fakeKinetics{
		rates: &kinetics.RatesResult{
			ProgressRates: []float64{2.5},
			ReactionRates: []float64{-2.5, 2.5},
			Ks:            []float64{0.013},
		},
	}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	report, err := svc.QueryRates(context.Background(), rateRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"k(0): 0.013"}, report.CoefficientLines)
}

func TestQueryRatesValidation(t *testing.T) {
	tests := []struct {
		name           string
		concentrations map[string]string
		temperature    string
		wantErr        error
	}{
		{"missing species", map[string]string{"OH": "10"}, "1000", &model.InvalidInputError{Species: "H2O"}},
		{"unknown species", map[string]string{"OH": "10", "H2O": "5", "N2": "1"}, "1000", &model.InvalidInputError{Species: "N2"}},
		{"negative concentration", map[string]string{"OH": "-1", "H2O": "5"}, "1000", &model.InvalidInputError{Species: "OH"}},
		{"non-numeric concentration", map[string]string{"OH": "ten", "H2O": "5"}, "1000", &model.InvalidInputError{Species: "OH"}},
		{"negative temperature", map[string]string{"OH": "10", "H2O": "5"}, "-5", model.ErrInvalidTemperature},
		{"zero temperature", map[string]string{"OH": "10", "H2O": "5"}, "0", model.ErrInvalidTemperature},
		{"non-numeric temperature", map[string]string{"OH": "10", "H2O": "5"}, "hot", model.ErrInvalidTemperature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeKinetics{}
			svc, sessionStore := newTestService(fake)
			sessionStore.Replace(testSession())

			_, err := svc.QueryRates(context.Background(), &model.RateQueryRequest{
				Concentrations: tt.concentrations,
				Temperature:    tt.temperature,
			})

			var invalidInput *model.InvalidInputError
			if errors.As(tt.wantErr, &invalidInput) {
				var got *model.InvalidInputError
				require.ErrorAs(t, err, &got)
				assert.Equal(t, invalidInput.Species, got.Species)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			// rejected before any network call
			assert.Zero(t, fake.calls)
		})
	}
}

func TestQueryRatesWithoutSession(t *testing.T) {
	fake := &fakeKinetics{}
	svc, _ := newTestService(fake)

	_, err := svc.QueryRates(context.Background(), rateRequest())

	assert.ErrorIs(t, err, model.ErrNoActiveSession)
	assert.Zero(t, fake.calls)
}

func TestQueryRatesLengthMismatch(t *testing.T) {
	fake := &fakeKinetics{
		rates: &kinetics.RatesResult{
			ProgressRates: []float64{2.5, 1.0},
			ReactionRates: []float64{-2.5, 2.5},
		},
	}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryRates(context.Background(), rateRequest())

	var rejected *model.ServerRejectedError
	assert.ErrorAs(t, err, &rejected)
}

func TestQueryRatesDiscardsStaleResponse(t *testing.T) {
	var sessionStore store.SessionStore
	fake := &fakeKinetics{
		rates: &kinetics.RatesResult{
			ProgressRates: []float64{2.5},
			ReactionRates: []float64{-2.5, 2.5},
		},
	}
	// a new upload lands while the rates call is in flight
	fake.onRates = func() {
		sessionStore.Replace(testSession())
	}

	svc, st := newTestService(fake)
	sessionStore = st
	sessionStore.Replace(testSession())

	_, err := svc.QueryRates(context.Background(), rateRequest())

	assert.ErrorIs(t, err, model.ErrSessionReplaced)
}

func plotRequest(mode model.PlotMode, tLow, tHigh string) *model.PlotQueryRequest {
	return &model.PlotQueryRequest{
		Concentrations: map[string]string{"OH": "10", "H2O": "5"},
		Temperature:    "1000",
		TLow:           tLow,
		THigh:          tHigh,
		Mode:           mode,
	}
}

func TestQueryPlotRangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		tLow   string
		tHigh  string
		reject bool
	}{
		{"valid range", "500", "2000", false},
		{"inverted range", "2000", "500", true},
		{"equal bounds", "500", "500", true},
		{"negative low", "-1", "2000", true},
		{"non-numeric low", "cold", "2000", true},
		{"non-numeric high", "500", "hot", true},
		{"zero low", "0", "2000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeKinetics{plotImage: "aW1hZ2U="}
			svc, sessionStore := newTestService(fake)
			sessionStore.Replace(testSession())

			_, err := svc.QueryPlot(context.Background(), plotRequest(model.PlotModeReaction, tt.tLow, tt.tHigh))

			if tt.reject {
				assert.ErrorIs(t, err, model.ErrInvalidRange)
				assert.Zero(t, fake.calls)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, fake.calls)
				assert.Equal(t, tt.tLow, formatRate(fake.plotLow))
				assert.Equal(t, tt.tHigh, formatRate(fake.plotHigh))
			}
		})
	}
}

func TestQueryPlotInvalidMode(t *testing.T) {
	fake := &fakeKinetics{plotImage: "aW1hZ2U="}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryPlot(context.Background(), plotRequest("", "500", "2000"))

	assert.ErrorIs(t, err, model.ErrInvalidMode)
	assert.Zero(t, fake.calls)
}

func TestQueryPlotMutualExclusion(t *testing.T) {
	fake := &fakeKinetics{plotImage: "aW1hZ2U="}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryPlot(context.Background(), plotRequest(model.PlotModeReaction, "500", "2000"))
	require.NoError(t, err)
	require.Equal(t, model.PlotModeReaction, svc.CurrentPlot().Mode)

	// a progress plot replaces the reaction plot, not sits next to it
	view, err := svc.QueryPlot(context.Background(), plotRequest(model.PlotModeProgress, "500", "2000"))
	require.NoError(t, err)

	assert.Equal(t, model.PlotModeProgress, view.Mode)
	assert.Equal(t, view, svc.CurrentPlot())
}

func TestQueryPlotFailureKeepsCurrentPlot(t *testing.T) {
	fake := &fakeKinetics{plotImage: "aW1hZ2U="}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryPlot(context.Background(), plotRequest(model.PlotModeReaction, "500", "2000"))
	require.NoError(t, err)

	fake.plotErr = &model.TransportError{StatusCode: 503}
	_, err = svc.QueryPlot(context.Background(), plotRequest(model.PlotModeProgress, "500", "2000"))
	require.Error(t, err)

	assert.Equal(t, model.PlotModeReaction, svc.CurrentPlot().Mode)
}

func TestUploadReplacesSession(t *testing.T) {
	fake := &fakeKinetics{session: testSession()}
	svc, sessionStore := newTestService(fake)

	resp, err := svc.Upload(context.Background(), "<mechanism/>")
	require.NoError(t, err)

	assert.Equal(t, "abc123", resp.SessionID)
	assert.Equal(t, []string{"OH", "H2O"}, resp.Species)
	require.Len(t, resp.Form, 2)
	assert.Equal(t, "OH", resp.Form[0].Name)

	active, err := sessionStore.Active()
	require.NoError(t, err)
	assert.Equal(t, "abc123", active.ID)
}

func TestUploadFailureLeavesSessionUntouched(t *testing.T) {
	fake := &fakeKinetics{session: testSession()}
	svc, sessionStore := newTestService(fake)

	_, err := svc.Upload(context.Background(), "<mechanism/>")
	require.NoError(t, err)

	fake.sessionErr = &model.ServerRejectedError{Reason: "malformed mechanism"}
	_, err = svc.Upload(context.Background(), "garbage")

	var rejected *model.ServerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "malformed mechanism", rejected.Reason)

	active, err := sessionStore.Active()
	require.NoError(t, err)
	assert.Equal(t, "abc123", active.ID)
}

func TestUploadClearsCurrentPlot(t *testing.T) {
	fake := &fakeKinetics{session: testSession(), plotImage: "aW1hZ2U="}
	svc, sessionStore := newTestService(fake)
	sessionStore.Replace(testSession())

	_, err := svc.QueryPlot(context.Background(), plotRequest(model.PlotModeReaction, "500", "2000"))
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "<mechanism/>")
	require.NoError(t, err)

	assert.Nil(t, svc.CurrentPlot())
}
