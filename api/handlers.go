package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"

	"github.com/jerryola1/evergreen/domain"
)

const (
	contactUpdateMaxSize = 16 << 10
	contactNotesMaxLen   = 2000
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, snapshots Snapshots, auth Authenticator, backend string, logger *log.Logger) {
	e.GET("/api/businesses", getBusinesses(snapshots, auth))
	e.GET("/api/dashboard", getDashboard(snapshots, auth, logger))
	e.PATCH("/api/businesses/:name/contact", patchContact(store, snapshots, auth))
	e.POST("/api/reload", postReload(snapshots, auth))
	e.GET("/api/health", getHealth(snapshots, backend))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getHealth(snapshots Snapshots, backend string) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap := snapshots.Current()
		return c.JSON(http.StatusOK, healthResponse{
			Status:        "ok",
			Backend:       backend,
			DataLoaded:    snap != nil,
			BusinessCount: snap.Count(),
		})
	}
}

func getBusinesses(snapshots Snapshots, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		snap, err := snapshots.Load(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(statusForError(err), errorResponse{Error: err.Error()})
		}
		businesses := snap.Businesses
		if businesses == nil {
			businesses = []domain.Business{}
		}
		return c.JSON(http.StatusOK, businesses)
	}
}

func getDashboard(snapshots Snapshots, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newDashboardRequestMetrics(ctx, logger)
		if spanCtx != nil {
			req := c.Request().WithContext(spanCtx)
			c.SetRequest(req)
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		criteria := criteriaFromQuery(c)

		loadStart := time.Now()
		snap, loadErr := snapshots.Load(ctx)
		metrics.ObserveLoad(time.Since(loadStart))
		if loadErr != nil {
			metrics.SetErrorStage("load")
			c.Logger().Error(loadErr)
			err = c.JSON(statusForError(loadErr), errorResponse{Error: loadErr.Error()})
			return err
		}
		metrics.SetSnapshotSize(snap.Count())

		deriveStart := time.Now()
		dashboard := domain.BuildDashboard(snap, criteria)
		metrics.ObserveDerive(time.Since(deriveStart))
		metrics.SetBusinessesReturned(len(dashboard.Businesses))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, dashboard)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

type contactUpdateRequest struct {
	Contacted bool    `json:"contacted"`
	Notes     *string `json:"notes"`
}

func patchContact(store Store, snapshots Snapshots, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		name, decodeErr := url.PathUnescape(c.Param("name"))
		if decodeErr != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid business name"})
		}
		name = strings.TrimSpace(name)
		if name == "" {
			verr := &domain.ValidationError{Field: "name", Reason: "must not be blank"}
			return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
		}

		lr := io.LimitReader(c.Request().Body, contactUpdateMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req contactUpdateRequest
		if err := dec.Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		notes := ""
		if req.Notes != nil {
			notes = *req.Notes
		}
		if len(notes) > contactNotesMaxLen {
			verr := &domain.ValidationError{Field: "notes", Reason: "longer than 2000 characters"}
			return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
		}

		upd := domain.ContactUpdate{Contacted: req.Contacted, Notes: notes}
		if err := store.UpdateContact(ctx, name, upd); err != nil {
			status := statusForError(err)
			if status >= http.StatusInternalServerError {
				c.Logger().Error(err)
			}
			return c.JSON(status, errorResponse{Error: err.Error()})
		}

		if _, err := snapshots.Reload(ctx); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "contact saved but refresh failed: " + err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postReload(snapshots Snapshots, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		snap, err := snapshots.Reload(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(statusForError(err), errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, reloadResponse{Status: "reloaded", BusinessCount: snap.Count()})
	}
}

func criteriaFromQuery(c echo.Context) domain.FilterCriteria {
	return domain.FilterCriteria{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Borough:  c.QueryParam("borough"),
		Postcode: c.QueryParam("postcode"),
		LeadType: c.QueryParam("leadType"),
		Priority: c.QueryParam("priority"),
		Category: c.QueryParam("category"),
	}
}

func statusForError(err error) int {
	var connErr *domain.ConnectivityError
	if errors.As(err, &connErr) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
