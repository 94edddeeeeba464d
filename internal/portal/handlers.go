package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/watchlist"
)

// SaveRequest is the JSON form of a watchlist submission.
type SaveRequest struct {
	Entries []EntryRequest `json:"entries"`
}

type EntryRequest struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
}

var saveRequestSchema = z.Struct(z.Shape{
	"entries": z.Slice(z.Struct(z.Shape{
		"identifier": z.String().Required(),
		"label":      z.String().Optional(),
	})).Required(),
})

// SaveForm is the form-encoded submission: one identifier per line.
type SaveForm struct {
	Ouis string `json:"ouis"`
	Macs string `json:"macs"`
}

var saveFormSchema = z.Struct(z.Shape{
	"ouis": z.String().Optional(),
	"macs": z.String().Optional(),
})

type EntryResponse struct {
	Identifier string `json:"identifier"`
	IsExact    bool   `json:"is_exact"`
	Label      string `json:"label"`
}

type ActionResponse struct {
	Action string  `json:"action"`
	FireIn float64 `json:"fire_in_seconds"`
}

type StatusResponse struct {
	Mode             string           `json:"mode"`
	Interacted       bool             `json:"interacted"`
	TimeoutRemaining float64          `json:"timeout_remaining_seconds"`
	Entries          []EntryResponse  `json:"entries"`
	Pending          []ActionResponse `json:"pending"`
}

// configPage feeds templates/config.html.
type configPage struct {
	Ouis    string
	Macs    string
	Message string
	Error   string
}

type SaveResponse struct {
	Accepted  int             `json:"accepted"`
	Dropped   int             `json:"dropped"`
	Persisted bool            `json:"persisted"`
	SwitchIn  float64         `json:"switch_in_seconds"`
	Entries   []EntryResponse `json:"entries"`
}

func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus serves the configuration page to browsers and the JSON status
// to everything else.
func (s *Server) GetStatus(c *gin.Context) {
	now := s.now()
	st := s.ctrl.Status(now)

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		s.renderPage(c, http.StatusOK, configPage{}, st.Entries)
		return
	}

	resp := StatusResponse{
		Mode:             st.Mode.String(),
		Interacted:       st.Interacted,
		TimeoutRemaining: st.TimeoutIn.Seconds(),
		Entries:          toEntryResponses(st.Entries),
		Pending:          []ActionResponse{},
	}
	for _, a := range st.Pending {
		resp.Pending = append(resp.Pending, ActionResponse{
			Action: a.Kind.String(),
			FireIn: a.FireAt.Sub(now).Seconds(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) PostSave(c *gin.Context) {
	html := c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML

	raw, errs := s.parseSave(c)
	if errs != nil {
		if html {
			s.renderPage(c, http.StatusBadRequest, configPage{Error: "Invalid submission"}, nil)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errs})
		return
	}

	now := s.now()
	sub, err := s.ctrl.SubmitWatchlist(raw, now)
	if err != nil {
		code, msg := http.StatusInternalServerError, err.Error()
		switch {
		case errors.Is(err, lifecycle.ErrEmptySubmission):
			code, msg = http.StatusBadRequest, "at least one valid OUI or MAC address is required"
		case errors.Is(err, lifecycle.ErrUnexpectedMode):
			code, msg = http.StatusConflict, "not in configuration mode"
		default:
			s.logger.Error("Watchlist submission failed", zap.Error(err))
		}
		if html {
			s.renderPage(c, code, configPage{Error: "Error: " + msg}, s.ctrl.Status(now).Entries)
			return
		}
		c.JSON(code, gin.H{"error": msg, "dropped": sub.Dropped})
		return
	}

	if html {
		s.renderPage(c, http.StatusOK, configPage{
			Message: fmt.Sprintf("Configuration saved: %d filters. Switching to scanning mode in %.0f seconds.",
				len(sub.Accepted), sub.SwitchAt.Sub(now).Seconds()),
		}, sub.Accepted)
		return
	}

	c.JSON(http.StatusOK, SaveResponse{
		Accepted:  len(sub.Accepted),
		Dropped:   sub.Dropped,
		Persisted: sub.Persisted,
		SwitchIn:  sub.SwitchAt.Sub(now).Seconds(),
		Entries:   toEntryResponses(sub.Accepted),
	})
}

// parseSave accepts either a JSON body or the form fields ouis and macs.
func (s *Server) parseSave(c *gin.Context) ([]watchlist.RawEntry, any) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req SaveRequest
		if errs := saveRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
			return nil, errs
		}
		raw := make([]watchlist.RawEntry, 0, len(req.Entries))
		for _, e := range req.Entries {
			raw = append(raw, watchlist.RawEntry{Identifier: e.Identifier, Label: e.Label})
		}
		return raw, nil
	}

	var form SaveForm
	if errs := saveFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		return nil, errs
	}
	return append(splitLines(form.Ouis), splitLines(form.Macs)...), nil
}

func (s *Server) PostClear(c *gin.Context) {
	persisted, err := s.ctrl.Clear(s.now())
	if errors.Is(err, lifecycle.ErrUnexpectedMode) {
		c.JSON(http.StatusConflict, gin.H{"error": "not in configuration mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true, "persisted": persisted})
}

func (s *Server) PostDeviceReset(c *gin.Context) {
	now := s.now()
	fireAt := s.ctrl.RequestReset(now)
	c.JSON(http.StatusAccepted, gin.H{"reset_in_seconds": fireAt.Sub(now).Seconds()})
}

// splitLines turns a textarea value into raw entries. Labels are left
// empty so the default "OUI:"/"MAC:" label applies.
func splitLines(text string) []watchlist.RawEntry {
	var out []watchlist.RawEntry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		out = append(out, watchlist.RawEntry{Identifier: line})
	}
	return out
}

// renderPage fills the textareas from entries: prefixes go to ouis and
// full addresses to macs, one per line.
func (s *Server) renderPage(c *gin.Context, code int, page configPage, entries []watchlist.Entry) {
	var ouis, macs []string
	for _, e := range entries {
		if e.Exact {
			macs = append(macs, e.Pattern)
		} else {
			ouis = append(ouis, e.Pattern)
		}
	}
	page.Ouis = strings.Join(ouis, "\n")
	page.Macs = strings.Join(macs, "\n")
	c.HTML(code, "config.html", page)
}

func toEntryResponses(entries []watchlist.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{Identifier: e.Pattern, IsExact: e.Exact, Label: e.Label})
	}
	return out
}
