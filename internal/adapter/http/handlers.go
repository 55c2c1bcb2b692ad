package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/couchcryptid/house-energy-service/internal/auth"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	msgCredentialsRequired = "Username and password are required."
	msgInvalidCredentials  = "Invalid credentials."
	msgNoData              = "No data found for the specified date range."
)

type handlers struct {
	deps Deps
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       int    `json:"id"`
	Address  string `json:"address"`
}

type reportResponse struct {
	Context   domain.ReportContext `json:"context"`
	Narrative string               `json:"narrative,omitempty"`
}

func (h *handlers) index(c *gin.Context) {
	c.String(http.StatusOK, "House energy API is running.")
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCredentialsRequired})
		return
	}

	user, err := h.deps.Store.UserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		h.deps.Logger.Info("login rejected", "reason", "unknown email")
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.deps.Logger.Info("login rejected", "reason", "bad password", "user_id", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}

	token, err := h.deps.Tokens.Issue(user.ID, user.Username, user.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.deps.Logger.Info("user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, loginResponse{Token: token, Username: user.Username, ID: user.ID, Address: user.Address})
}

// house resolves the caller's house, writing the error response itself when
// it cannot.
func (h *handlers) house(c *gin.Context) (domain.House, bool) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
		return domain.House{}, false
	}
	house, err := h.deps.Store.HouseForUser(c.Request.Context(), claims.ID)
	if err != nil {
		h.fail(c, err)
		return domain.House{}, false
	}
	return house, true
}

func (h *handlers) today(c *gin.Context) {
	house, ok := h.house(c)
	if !ok {
		return
	}
	rows, err := h.deps.Store.Intervals(c.Request.Context(), house.ID, domain.TodayPeriod(h.deps.Now()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}

func (h *handlers) lastWeek(c *gin.Context) {
	h.daily(c, func() (domain.Period, error) {
		return domain.LastWeekPeriod(h.deps.Now()), nil
	})
}

func (h *handlers) rangeTotals(c *gin.Context) {
	h.daily(c, func() (domain.Period, error) {
		return domain.ResolvePresetOrRange(c.Query("preset"), c.Param("start"), c.Param("end"), h.deps.Now())
	})
}

func (h *handlers) quarter(c *gin.Context) {
	h.daily(c, func() (domain.Period, error) {
		return h.quarterPeriod(c)
	})
}

func (h *handlers) daily(c *gin.Context, period func() (domain.Period, error)) {
	p, err := period()
	if err != nil {
		h.fail(c, err)
		return
	}
	house, ok := h.house(c)
	if !ok {
		return
	}
	rows, err := h.deps.Store.DailyConsumption(c.Request.Context(), house.ID, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}

func (h *handlers) downloadRange(c *gin.Context) {
	p, err := domain.ResolvePeriod(c.Param("start"), c.Param("end"), h.deps.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.download(c, p, formatCSV)
}

func (h *handlers) downloadQuarter(c *gin.Context) {
	p, err := h.quarterPeriod(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	format := c.DefaultQuery("format", formatCSV)
	if format != formatCSV && format != formatXLSX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	h.download(c, p, format)
}

func (h *handlers) download(c *gin.Context, p domain.Period, format string) {
	house, ok := h.house(c)
	if !ok {
		return
	}
	rows, err := h.deps.Store.DailyConsumption(c.Request.Context(), house.ID, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNoData})
		return
	}
	if err := writeExport(c, format, rows); err != nil {
		h.deps.Logger.Error("export failed", "format", format, "error", err)
	}
}

func (h *handlers) bills(c *gin.Context) {
	house, ok := h.house(c)
	if !ok {
		return
	}
	rows, err := h.deps.Store.MonthlyBills(c.Request.Context(), house.ID, h.deps.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}

func (h *handlers) report(c *gin.Context) {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	house, ok := h.house(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rc, err := h.deps.Reports.BuildContext(ctx, house.ID, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := reportResponse{Context: rc}
	if narrate, _ := strconv.ParseBool(c.Query("narrate")); narrate {
		if resp.Narrative, err = h.deps.Reports.Narrate(ctx, rc); err != nil {
			h.deps.Logger.Error("narrative failed", "house_id", house.ID, "report_date", rc.ReportDate, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "narrative generation failed"})
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) quarterPeriod(c *gin.Context) (domain.Period, error) {
	quarter, err := strconv.Atoi(c.Param("quarter"))
	if err != nil {
		return domain.Period{}, &domain.RangeError{Msg: "Invalid quarter."}
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return domain.Period{}, &domain.RangeError{Msg: "Invalid year."}
	}
	return domain.QuarterPeriod(quarter, year, h.deps.Now())
}

// fail maps domain errors onto status codes. Anything unrecognised is a 500.
func (h *handlers) fail(c *gin.Context, err error) {
	var rangeErr *domain.RangeError
	switch {
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": rangeErr.Msg})
	case errors.Is(err, domain.ErrHouseNotFound), errors.Is(err, domain.ErrMissingData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.deps.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
