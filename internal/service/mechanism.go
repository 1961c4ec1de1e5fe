package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"kinlab-backend/internal/kinetics"
	"kinlab-backend/internal/model"
	"kinlab-backend/internal/store"
	"kinlab-backend/pkg/logger"
)

// MechanismService owns the active session and the request/response protocol
// around it: it validates every query against the session's species list
// before anything is sent, and turns the positional arrays that come back
// into readable reports.
type MechanismService struct {
	client kinetics.Service
	store  store.SessionStore

	mu          sync.RWMutex
	currentPlot *model.PlotView
}

func NewMechanismService(client kinetics.Service, sessionStore store.SessionStore) *MechanismService {
	return &MechanismService{
		client: client,
		store:  sessionStore,
	}
}

// Upload sends the raw mechanism document off for parsing and installs the
// returned session as the active one. On any failure the previous session
// stays in place.
func (s *MechanismService) Upload(ctx context.Context, rawDocument string) (*model.SessionResponse, error) {
	session, err := s.client.CreateSession(ctx, rawDocument)
	if err != nil {
		logger.Warnf("mechanism upload rejected: %v", err)
		return nil, err
	}

	s.store.Replace(session)

	// plots rendered for the old mechanism are meaningless now
	s.mu.Lock()
	s.currentPlot = nil
	s.mu.Unlock()

	logger.Infof("active session replaced: id=%s species=%d reactions=%d",
		session.ID, len(session.Species), len(session.Equations))

	return s.sessionResponse(session), nil
}

// ActiveSession returns the current session and its form descriptors.
func (s *MechanismService) ActiveSession() (*model.SessionResponse, error) {
	session, err := s.store.Active()
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(session), nil
}

func (s *MechanismService) sessionResponse(session *model.Session) *model.SessionResponse {
	return &model.SessionResponse{
		SessionID: session.ID,
		Species:   session.Species,
		Equations: session.Equations,
		Form:      BuildForm(session.Species),
	}
}

// QueryRates validates the snapshot inputs, fetches one rates evaluation and
// renders it. Either the full report is produced or nothing is.
func (s *MechanismService) QueryRates(ctx context.Context, req *model.RateQueryRequest) (*model.RateReport, error) {
	session, err := s.store.Active()
	if err != nil {
		return nil, err
	}

	body, err := buildBody(session, req.Concentrations, req.Temperature)
	if err != nil {
		return nil, err
	}

	generation := s.store.Generation()
	result, err := s.client.GetRates(ctx, session.ID, body)
	if err != nil {
		return nil, err
	}
	if s.store.Generation() != generation {
		return nil, model.ErrSessionReplaced
	}

	return renderReport(session, result)
}

// QueryPlot validates the snapshot plus the temperature range and fetches the
// swept-rate image for the requested mode. The returned view becomes the only
// visible plot, whichever mode was up before.
func (s *MechanismService) QueryPlot(ctx context.Context, req *model.PlotQueryRequest) (*model.PlotView, error) {
	session, err := s.store.Active()
	if err != nil {
		return nil, err
	}
	if !req.Mode.Valid() {
		return nil, model.ErrInvalidMode
	}

	body, err := buildBody(session, req.Concentrations, req.Temperature)
	if err != nil {
		return nil, err
	}

	tLow, tHigh, err := parseRange(req.TLow, req.THigh)
	if err != nil {
		return nil, err
	}

	generation := s.store.Generation()
	image, err := s.client.GetPlot(ctx, session.ID, tLow, tHigh, req.Mode, body)
	if err != nil {
		return nil, err
	}
	if s.store.Generation() != generation {
		return nil, model.ErrSessionReplaced
	}

	view := &model.PlotView{Mode: req.Mode, Image: image}

	s.mu.Lock()
	s.currentPlot = view
	s.mu.Unlock()

	return view, nil
}

// CurrentPlot returns the plot on display, nil if none.
func (s *MechanismService) CurrentPlot() *model.PlotView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPlot
}

// buildBody turns raw form values into the wire body: one parsed
// concentration per species in the session, plus the "_temp" key. Exactly
// len(species)+1 entries, or an error before any network traffic.
func buildBody(session *model.Session, concentrations map[string]string, temperature string) (map[string]float64, error) {
	body := make(map[string]float64, len(session.Species)+1)

	for _, sp := range session.Species {
		raw, ok := concentrations[sp]
		if !ok {
			return nil, &model.InvalidInputError{Species: sp}
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return nil, &model.InvalidInputError{Species: sp}
		}
		body[sp] = value
	}

	// keys outside the session's species list are never forwarded
	for name := range concentrations {
		if _, ok := body[name]; !ok {
			return nil, &model.InvalidInputError{Species: name}
		}
	}

	temp, err := strconv.ParseFloat(temperature, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) || temp <= 0 {
		return nil, model.ErrInvalidTemperature
	}
	body["_temp"] = temp

	return body, nil
}

func parseRange(rawLow, rawHigh string) (float64, float64, error) {
	tLow, err := strconv.ParseFloat(rawLow, 64)
	if err != nil || math.IsNaN(tLow) {
		return 0, 0, model.ErrInvalidRange
	}
	tHigh, err := strconv.ParseFloat(rawHigh, 64)
	if err != nil || math.IsNaN(tHigh) {
		return 0, 0, model.ErrInvalidRange
	}
	if tLow < 0 || tHigh <= tLow {
		return 0, 0, model.ErrInvalidRange
	}
	return tLow, tHigh, nil
}

// renderReport pairs the response arrays with the session's equation and
// species lists by index. A length mismatch means the arrays cannot be
// trusted against this session and nothing is rendered.
func renderReport(session *model.Session, result *kinetics.RatesResult) (*model.RateReport, error) {
	if len(result.ProgressRates) != len(session.Equations) {
		return nil, &model.ServerRejectedError{
			Reason: fmt.Sprintf("got %d progress rates for %d reactions", len(result.ProgressRates), len(session.Equations)),
		}
	}
	if len(result.ReactionRates) != len(session.Species) {
		return nil, &model.ServerRejectedError{
			Reason: fmt.Sprintf("got %d reaction rates for %d species", len(result.ReactionRates), len(session.Species)),
		}
	}

	report := &model.RateReport{
		ReactionLines: make([]string, len(session.Equations)),
		SpeciesLines:  make([]string, len(session.Species)),
	}

	for i, eq := range session.Equations {
		report.ReactionLines[i] = fmt.Sprintf("Reaction %d: %s / %s", i, formatRate(result.ProgressRates[i]), eq)
	}
	for i, sp := range session.Species {
		report.SpeciesLines[i] = fmt.Sprintf("%s: %s", sp, formatRate(result.ReactionRates[i]))
	}

	// rate coefficients are optional in the response; skip silently when the
	// count does not line up with the reactions
	if len(result.Ks) == len(session.Equations) && len(result.Ks) > 0 {
		report.CoefficientLines = make([]string, len(result.Ks))
		for i, k := range result.Ks {
			report.CoefficientLines[i] = fmt.Sprintf("k(%d): %s", i, formatRate(k))
		}
	}

	return report, nil
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
