package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/f1-results-pipeline/pkg/analytics"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ingest"
	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
	"github.com/Sternrassler/f1-results-pipeline/pkg/rounds"
)

// rowsResponse is the envelope of every table endpoint. Rows is never
// null so clients can render an empty table directly.
type rowsResponse[T any] struct {
	Rows  []T  `json:"rows"`
	Empty bool `json:"empty"`
}

func rowsOf[T any](rows []T) rowsResponse[T] {
	if rows == nil {
		rows = []T{}
	}
	return rowsResponse[T]{Rows: rows, Empty: len(rows) == 0}
}

type healthResponse struct {
	Status    string                  `json:"status"`
	RunID     string                  `json:"run_id"`
	Range     string                  `json:"range"`
	Rows      int                     `json:"rows"`
	Cancelled bool                    `json:"cancelled"`
	Resources []ingest.ResourceReport `json:"resources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resources := s.run.Report.Resources
	if resources == nil {
		resources = []ingest.ResourceReport{}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		RunID:     s.run.ID.String(),
		Range:     s.run.Range.String(),
		Rows:      s.run.Tables.Rows(),
		Cancelled: s.run.Report.Cancelled(),
		Resources: resources,
	})
}

func (s *Server) handleChampions(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", false)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rows := model.ChampionsWhere(s.run.Tables.Champions, model.ChampionFilter{
		Drivers:     driverParam(r),
		Nationality: strings.TrimSpace(r.URL.Query().Get("nationality")),
		Year:        year,
	})
	writeJSON(w, http.StatusOK, rowsOf(rows))
}

func (s *Server) handleYoungest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Youngest))
}

func (s *Server) handleOldest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Oldest))
}

func (s *Server) handleNationalityRollup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Nationality))
}

func (s *Server) handleConstructorRollup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Constructors))
}

func (s *Server) handleDriverRollup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Drivers))
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.views.Winners))
}

type heatmapResponse struct {
	rowsResponse[analytics.HeatCell]
	Years   []int    `json:"years"`
	Drivers []string `json:"drivers"`
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	hm := analytics.WinsHeatmap(s.run.Tables.Winners, driverParam(r))
	resp := heatmapResponse{
		rowsResponse: rowsOf(hm.Cells),
		Years:        hm.Years,
		Drivers:      hm.Drivers,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	series := analytics.StandingsProgression(s.run.Tables.Standings, driverParam(r))
	writeJSON(w, http.StatusOK, rowsOf(series))
}

type qualifyingRow struct {
	model.QualRaceRow
	Gained *int `json:"positions_gained"`
}

func (s *Server) handleQualifying(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", true)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	completed := rounds.CompleteAll(s.run.Tables.QualRace, year, driverParam(r).Names())
	rows := make([]qualifyingRow, 0, len(completed))
	for _, row := range completed {
		out := qualifyingRow{QualRaceRow: row}
		if g, ok := row.PositionsGained(); ok {
			out.Gained = model.IntPtr(g)
		}
		rows = append(rows, out)
	}
	writeJSON(w, http.StatusOK, rowsOf(rows))
}

func (s *Server) handleCircuits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rowsOf(s.run.Tables.Circuits))
}

func (s *Server) handleLaps(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("lap timings are not enabled"))
		return
	}
	year, err := intParam(r, "year", true)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	round, err := intParam(r, "round", true)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if s.limiter != nil {
		ctx = ratelimit.NewContext(ctx, s.limiter)
	}
	series, err := ingest.LapsForRace(ctx, s.source, year, round, s.pageSize)
	switch {
	case errors.Is(err, ingest.ErrNoData):
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no lap timings for %d round %d", year, round))
		return
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// driverParam collects every driver query value; each may itself be a
// comma-separated list.
func driverParam(r *http.Request) model.DriverSet {
	var names []string
	for _, v := range r.URL.Query()["driver"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return model.NewDriverSet(names...)
}

func intParam(r *http.Request, name string, required bool) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%s is required", name)
		}
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
